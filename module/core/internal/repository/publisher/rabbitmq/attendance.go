package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/publisher"
)

var _ publisher.AttendancePublisher = (*AttendancePublisher)(nil)

const (
	ExchangeName = "hr.attendance"
	QueueName    = "attendance_events"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AttendancePublisher struct {
	ch channel
}

func NewAttendancePublisher(conn *amqp.Connection) (*AttendancePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "attendance.#", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AttendancePublisher{ch: ch}, nil
}

type eventMessage struct {
	RecordID     string          `json:"record_id"`
	EmployeeID   string          `json:"employee_id"`
	DeviceID     string          `json:"device_id"`
	Event        string          `json:"event"`
	WorkLocation string          `json:"work_location"`
	Location     messageLocation `json:"location"`
	WithinOffice bool            `json:"within_office"`
	Timestamp    int64           `json:"timestamp"`
}

type messageLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func RoutingKey(event domain.AttendanceEventType) string {
	return "attendance." + string(event)
}

func (p *AttendancePublisher) PublishEvent(ctx context.Context, event *domain.AttendanceEvent) error {
	msg := eventMessage{
		RecordID:     event.RecordID,
		EmployeeID:   event.EmployeeID,
		DeviceID:     event.DeviceID,
		Event:        string(event.Event),
		WorkLocation: string(event.WorkLocation),
		Location: messageLocation{
			Latitude:  event.Location.Point.Lat,
			Longitude: event.Location.Point.Lon,
			Accuracy:  event.Location.AccuracyMeters,
		},
		WithinOffice: event.WithinOffice,
		Timestamp:    event.Timestamp,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey(event.Event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", event.Event, err)
	}
	return nil
}

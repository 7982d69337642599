package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func TestPublishEvent_Success(t *testing.T) {
	ch := &fakeChannel{}
	pub := &AttendancePublisher{ch: ch}

	err := pub.PublishEvent(context.Background(), &domain.AttendanceEvent{
		RecordID:     "rec-1",
		EmployeeID:   "EMP001",
		DeviceID:     "DEV42",
		Event:        domain.AttendanceCheckIn,
		WorkLocation: domain.WorkLocationOffice,
		Location: domain.LocationSample{
			Point:          domain.GeoPoint{Lat: 5.767477, Lon: -0.180019},
			AccuracyMeters: 8,
		},
		WithinOffice: true,
		Timestamp:    1715003456,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.exchange != ExchangeName {
		t.Errorf("expected %s, got %s", ExchangeName, ch.exchange)
	}
	if ch.key != "attendance.check_in" {
		t.Errorf("expected attendance.check_in, got %s", ch.key)
	}

	var body eventMessage
	if err := json.Unmarshal(ch.msg.Body, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.EmployeeID != "EMP001" || body.DeviceID != "DEV42" {
		t.Errorf("expected EMP001 on DEV42, got %s on %s", body.EmployeeID, body.DeviceID)
	}
	if body.Location.Latitude != 5.767477 {
		t.Errorf("expected 5.767477, got %f", body.Location.Latitude)
	}
	if !body.WithinOffice {
		t.Error("expected within_office true")
	}
}

func TestPublishEvent_ChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := &AttendancePublisher{ch: ch}

	err := pub.PublishEvent(context.Background(), &domain.AttendanceEvent{Event: domain.AttendanceCheckOut})
	if err == nil {
		t.Fatal("expected error")
	}
}

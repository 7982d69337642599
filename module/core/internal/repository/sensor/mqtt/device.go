package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/sensor"
)

var (
	_ sensor.PositionSensor    = (*DeviceSensor)(nil)
	_ sensor.PermissionQuerier = (*DeviceSensor)(nil)
)

const (
	locationResponsePattern   = "/hr/device/+/location/response"
	permissionResponsePattern = "/hr/device/+/permission/response"

	defaultPermissionTimeout = 5 * time.Second
)

type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

type locationRequest struct {
	RequestID    string `json:"request_id"`
	HighAccuracy bool   `json:"high_accuracy"`
	TimeoutMs    int64  `json:"timeout_ms"`
	MaximumAgeMs int64  `json:"maximum_age_ms"`
}

type permissionRequest struct {
	RequestID string `json:"request_id"`
}

// Coordinates are pointers so a reply without them is not read as 0,0.
type responseMessage struct {
	RequestID string   `json:"request_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	ErrorCode int      `json:"error_code"`
	State     string   `json:"state"`
}

const (
	kindLocation   = "location"
	kindPermission = "permission"
)

type pendingRequest struct {
	kind     string
	deviceID string
	handle   func(responseMessage)
}

// DeviceSensor talks to employee devices over MQTT. Every request carries a
// request id and the device answers on the matching response topic.
type DeviceSensor struct {
	client            client
	logger            *slog.Logger
	permissionTimeout time.Duration
	newID             func() string

	mu      sync.Mutex
	pending map[string]pendingRequest
}

func NewDeviceSensor(c client, logger *slog.Logger) *DeviceSensor {
	return &DeviceSensor{
		client:            c,
		logger:            logger,
		permissionTimeout: defaultPermissionTimeout,
		newID:             uuid.NewString,
		pending:           make(map[string]pendingRequest),
	}
}

func LocationRequestTopic(deviceID string) string {
	return fmt.Sprintf("/hr/device/%s/location/request", deviceID)
}

func PermissionRequestTopic(deviceID string) string {
	return fmt.Sprintf("/hr/device/%s/permission/request", deviceID)
}

func (s *DeviceSensor) Start() error {
	for _, pattern := range []string{locationResponsePattern, permissionResponsePattern} {
		token := s.client.Subscribe(pattern, 1, s.handleResponse)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe %s: %w", pattern, err)
		}
	}
	return nil
}

func (s *DeviceSensor) GetCurrentPosition(deviceID string, opts domain.AcquireOptions, onSuccess func(sensor.Fix), onError func(sensor.ErrorCode)) {
	id := s.newID()
	s.register(id, kindLocation, deviceID, func(resp responseMessage) {
		if resp.ErrorCode != 0 {
			onError(sensor.ErrorCode(resp.ErrorCode))
			return
		}
		if resp.Latitude == nil || resp.Longitude == nil {
			s.logger.Warn("location response without coordinates", "device_id", deviceID, "request_id", id)
			onError(sensor.CodePositionUnavailable)
			return
		}
		onSuccess(sensor.Fix{Lat: *resp.Latitude, Lon: *resp.Longitude, Accuracy: resp.Accuracy})
	})

	if opts.Timeout > 0 {
		time.AfterFunc(opts.Timeout, func() {
			if _, ok := s.take(id); ok {
				onError(sensor.CodeTimeout)
			}
		})
	}

	payload, err := json.Marshal(locationRequest{
		RequestID:    id,
		HighAccuracy: opts.HighAccuracy,
		TimeoutMs:    opts.Timeout.Milliseconds(),
		MaximumAgeMs: opts.MaxCacheAge.Milliseconds(),
	})
	if err != nil {
		s.fail(id, err, onError)
		return
	}

	token := s.client.Publish(LocationRequestTopic(deviceID), 1, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			s.fail(id, err, onError)
		}
	}()
}

func (s *DeviceSensor) QueryPermission(ctx context.Context, deviceID string) (domain.PermissionState, error) {
	id := s.newID()
	answer := make(chan responseMessage, 1)
	s.register(id, kindPermission, deviceID, func(resp responseMessage) { answer <- resp })
	defer s.take(id)

	payload, err := json.Marshal(permissionRequest{RequestID: id})
	if err != nil {
		return "", fmt.Errorf("marshal permission request: %w", err)
	}

	token := s.client.Publish(PermissionRequestTopic(deviceID), 1, false, payload)
	if !token.WaitTimeout(s.permissionTimeout) {
		return "", errors.New("publish permission request: timed out")
	}
	if err := token.Error(); err != nil {
		return "", fmt.Errorf("publish permission request: %w", err)
	}

	timer := time.NewTimer(s.permissionTimeout)
	defer timer.Stop()

	select {
	case resp := <-answer:
		return domain.PermissionState(resp.State), nil
	case <-timer.C:
		return "", fmt.Errorf("permission query %s: no answer", deviceID)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *DeviceSensor) handleResponse(_ paho.Client, msg paho.Message) {
	var resp responseMessage
	if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
		s.logger.Warn("invalid device response", "topic", msg.Topic(), "error", err)
		return
	}

	deviceID := DeviceIDFromTopic(msg.Topic())
	req, ok := s.claim(resp.RequestID, responseKind(msg.Topic()), deviceID)
	if !ok {
		s.logger.Debug("late, unknown or mismatched device response",
			"topic", msg.Topic(),
			"device_id", deviceID,
			"request_id", resp.RequestID,
		)
		return
	}
	req.handle(resp)
}

func (s *DeviceSensor) fail(id string, err error, onError func(sensor.ErrorCode)) {
	if _, ok := s.take(id); !ok {
		return
	}
	s.logger.Warn("location request failed", "request_id", id, "error", err)
	onError(sensor.CodePositionUnavailable)
}

func (s *DeviceSensor) register(id, kind, deviceID string, handle func(responseMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = pendingRequest{kind: kind, deviceID: deviceID, handle: handle}
}

// take removes the pending request for id. Only the first caller gets it.
func (s *DeviceSensor) take(id string) (pendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return req, ok
}

// claim is take for device replies. A reply from another device or on the
// other response topic leaves the request pending.
func (s *DeviceSensor) claim(id, kind, deviceID string) (pendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[id]
	if !ok || req.kind != kind || req.deviceID != deviceID {
		return pendingRequest{}, false
	}
	delete(s.pending, id)
	return req, true
}

// responseKind returns "location" or "permission" for a
// /hr/device/<id>/<kind>/response topic.
func responseKind(topic string) string {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) != 5 || parts[4] != "response" {
		return ""
	}
	return parts[3]
}

// DeviceIDFromTopic extracts the device id from a /hr/device/<id>/... topic.
func DeviceIDFromTopic(topic string) string {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) < 3 || parts[0] != "hr" || parts[1] != "device" {
		return ""
	}
	return parts[2]
}

package sensor

import (
	"context"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

type Fix struct {
	Lat      float64
	Lon      float64
	Accuracy float64
}

// ErrorCode values follow the device position API.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
	CodeUnsupported         ErrorCode = 4
)

// PositionSensor requests a single fix from a device. Exactly one of the two
// callbacks is expected to fire, possibly from another goroutine.
type PositionSensor interface {
	GetCurrentPosition(deviceID string, opts domain.AcquireOptions, onSuccess func(Fix), onError func(ErrorCode))
}

type PermissionQuerier interface {
	QueryPermission(ctx context.Context, deviceID string) (domain.PermissionState, error)
}

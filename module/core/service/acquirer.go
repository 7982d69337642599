package service

import (
	"context"
	"sync"
	"time"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/sensor"
)

type LocationAcquirer struct {
	sensor sensor.PositionSensor
	now    func() time.Time
}

// NewLocationAcquirer accepts a nil sensor; every acquisition then fails with
// domain.ErrUnsupported.
func NewLocationAcquirer(s sensor.PositionSensor) *LocationAcquirer {
	return &LocationAcquirer{sensor: s, now: time.Now}
}

type acquireOutcome struct {
	sample *domain.LocationSample
	err    error
}

// Acquire asks the device for one fresh fix and blocks until the sensor
// answers, opts.Timeout elapses or ctx is done.
func (a *LocationAcquirer) Acquire(ctx context.Context, deviceID string, opts domain.AcquireOptions) (*domain.LocationSample, error) {
	if a.sensor == nil {
		return nil, domain.ErrUnsupported
	}

	done := make(chan acquireOutcome, 1)
	var once sync.Once
	settle := func(o acquireOutcome) {
		once.Do(func() { done <- o })
	}

	a.sensor.GetCurrentPosition(deviceID, opts,
		func(fix sensor.Fix) {
			settle(acquireOutcome{sample: &domain.LocationSample{
				Point:          domain.GeoPoint{Lat: fix.Lat, Lon: fix.Lon},
				AccuracyMeters: fix.Accuracy,
				CapturedAt:     a.now(),
			}})
		},
		func(code sensor.ErrorCode) {
			settle(acquireOutcome{err: locationError(code)})
		},
	)

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case o := <-done:
		return o.sample, o.err
	case <-timeout:
		settle(acquireOutcome{})
		return nil, domain.ErrTimeout
	case <-ctx.Done():
		settle(acquireOutcome{})
		return nil, &domain.LocationError{Code: domain.LocationUnknown, Err: ctx.Err()}
	}
}

func locationError(code sensor.ErrorCode) error {
	switch code {
	case sensor.CodePermissionDenied:
		return domain.ErrPermissionDenied
	case sensor.CodePositionUnavailable:
		return domain.ErrPositionUnavailable
	case sensor.CodeTimeout:
		return domain.ErrTimeout
	case sensor.CodeUnsupported:
		return domain.ErrUnsupported
	}
	return domain.ErrUnknownLocation
}

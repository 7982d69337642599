package service

import (
	"context"
	"errors"
	"time"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

const remoteCapturedMessage = "Location captured for remote work"

const (
	outcomeLocated = "located"
	outcomeInside  = "inside"
	outcomeOutside = "outside"
	outcomeFailed  = "failed"
)

type locationAcquirer interface {
	Acquire(ctx context.Context, deviceID string, opts domain.AcquireOptions) (*domain.LocationSample, error)
}

type geofenceEvaluator interface {
	Geofence() domain.GeofenceConfig
	Evaluate(sample domain.GeoPoint, cfg domain.GeofenceConfig) domain.GeofenceVerdict
}

type validationRecorder interface {
	ObserveValidation(workLocation, outcome string, acquisition time.Duration)
}

type ValidationService struct {
	acquirer  locationAcquirer
	evaluator geofenceEvaluator
	opts      domain.AcquireOptions
	recorder  validationRecorder
}

func NewValidationService(acquirer locationAcquirer, evaluator geofenceEvaluator, opts domain.AcquireOptions, recorder validationRecorder) *ValidationService {
	return &ValidationService{
		acquirer:  acquirer,
		evaluator: evaluator,
		opts:      opts,
		recorder:  recorder,
	}
}

// Validate checks the device against the configured office geofence.
func (s *ValidationService) Validate(ctx context.Context, deviceID string, workLocation domain.WorkLocation) domain.ValidationResult {
	return s.ValidateWithin(ctx, deviceID, workLocation, s.evaluator.Geofence())
}

// ValidateWithin acquires one fix from the device and, for office work, checks
// it against geofence. Acquisition failures come back as an unsuccessful
// result carrying the error message, never as a Go error.
func (s *ValidationService) ValidateWithin(ctx context.Context, deviceID string, workLocation domain.WorkLocation, geofence domain.GeofenceConfig) domain.ValidationResult {
	started := time.Now()
	sample, err := s.acquirer.Acquire(ctx, deviceID, s.opts)
	elapsed := time.Since(started)

	if err != nil {
		msg := acquisitionMessage(err)
		s.observe(workLocation, outcomeFailed, elapsed)
		return domain.ValidationResult{
			Success: false,
			Message: msg,
			Error:   msg,
		}
	}

	if workLocation == domain.WorkLocationRemote {
		s.observe(workLocation, outcomeLocated, elapsed)
		return domain.ValidationResult{
			Success:        true,
			Location:       sample,
			IsWithinOffice: false,
			Message:        remoteCapturedMessage,
		}
	}

	verdict := s.evaluator.Evaluate(sample.Point, geofence)
	outcome := outcomeOutside
	if verdict.WithinRange {
		outcome = outcomeInside
	}
	s.observe(workLocation, outcome, elapsed)

	distance := verdict.DistanceMeters
	return domain.ValidationResult{
		Success:        verdict.WithinRange,
		Location:       sample,
		DistanceMeters: &distance,
		IsWithinOffice: verdict.WithinRange,
		Message:        verdict.Message,
	}
}

func (s *ValidationService) observe(workLocation domain.WorkLocation, outcome string, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveValidation(string(metricLocation(workLocation)), outcome, elapsed)
}

// metricLocation keeps the label set to office and remote. Anything that is
// not remote is validated as office.
func metricLocation(workLocation domain.WorkLocation) domain.WorkLocation {
	if workLocation == domain.WorkLocationRemote {
		return domain.WorkLocationRemote
	}
	return domain.WorkLocationOffice
}

func acquisitionMessage(err error) string {
	var locErr *domain.LocationError
	if errors.As(err, &locErr) {
		return locErr.Error()
	}
	return domain.ErrUnknownLocation.Error()
}

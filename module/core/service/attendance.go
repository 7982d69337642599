package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/database"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/publisher"
)

type locationValidator interface {
	Validate(ctx context.Context, deviceID string, workLocation domain.WorkLocation) domain.ValidationResult
}

type attendanceRecorder interface {
	ObserveAttendance(event string)
}

type AttendanceService struct {
	validator locationValidator
	repo      database.AttendanceRepository
	publisher publisher.AttendancePublisher
	recorder  attendanceRecorder
	logger    *slog.Logger
	newID     func() string
}

func NewAttendanceService(
	validator locationValidator,
	repo database.AttendanceRepository,
	pub publisher.AttendancePublisher,
	recorder attendanceRecorder,
	logger *slog.Logger,
) *AttendanceService {
	return &AttendanceService{
		validator: validator,
		repo:      repo,
		publisher: pub,
		recorder:  recorder,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// CheckIn validates the device location and opens an attendance record. When
// validation does not succeed the result is returned with a nil record.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID, deviceID string, workLocation domain.WorkLocation) (domain.ValidationResult, *domain.AttendanceRecord, error) {
	open, err := s.repo.GetOpen(ctx, employeeID)
	if err != nil {
		return domain.ValidationResult{}, nil, err
	}
	if open != nil {
		return domain.ValidationResult{}, nil, domain.ErrAlreadyCheckedIn
	}

	result := s.validator.Validate(ctx, deviceID, workLocation)
	if !result.Success {
		s.logger.InfoContext(ctx, "check-in rejected",
			"employee_id", employeeID,
			"work_location", workLocation,
			"reason", result.Message,
		)
		return result, nil, nil
	}

	rec := &domain.AttendanceRecord{
		ID:             s.newID(),
		EmployeeID:     employeeID,
		DeviceID:       deviceID,
		WorkLocation:   workLocation,
		CheckInAt:      result.Location.CapturedAt,
		CheckInPoint:   result.Location.Point,
		CheckInAcc:     result.Location.AccuracyMeters,
		DistanceMeters: result.DistanceMeters,
		WithinOffice:   result.IsWithinOffice,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return result, nil, fmt.Errorf("check-in: %w", err)
	}

	s.emit(ctx, rec, deviceID, domain.AttendanceCheckIn, result)
	return result, rec, nil
}

// CheckOut validates the device location and closes the open record.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID, deviceID string, workLocation domain.WorkLocation) (domain.ValidationResult, *domain.AttendanceRecord, error) {
	open, err := s.repo.GetOpen(ctx, employeeID)
	if err != nil {
		return domain.ValidationResult{}, nil, err
	}
	if open == nil {
		return domain.ValidationResult{}, nil, domain.ErrNotCheckedIn
	}

	result := s.validator.Validate(ctx, deviceID, workLocation)
	if !result.Success {
		s.logger.InfoContext(ctx, "check-out rejected",
			"employee_id", employeeID,
			"work_location", workLocation,
			"reason", result.Message,
		)
		return result, nil, nil
	}

	at := result.Location.CapturedAt
	point := result.Location.Point
	if err := s.repo.CloseRecord(ctx, open.ID, deviceID, at, point); err != nil {
		return result, nil, fmt.Errorf("check-out: %w", err)
	}
	open.CheckOutAt = &at
	open.CheckOutPoint = &point
	open.CheckOutDevice = &deviceID

	s.emit(ctx, open, deviceID, domain.AttendanceCheckOut, result)
	return result, open, nil
}

func (s *AttendanceService) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.AttendanceRecord, error) {
	return s.repo.GetHistory(ctx, query)
}

// emit publishes the event after the record is committed. deviceID is the
// device that supplied this event's location. A failed publish is logged only;
// the record stands.
func (s *AttendanceService) emit(ctx context.Context, rec *domain.AttendanceRecord, deviceID string, event domain.AttendanceEventType, result domain.ValidationResult) {
	if s.recorder != nil {
		s.recorder.ObserveAttendance(string(event))
	}

	err := s.publisher.PublishEvent(ctx, &domain.AttendanceEvent{
		RecordID:     rec.ID,
		EmployeeID:   rec.EmployeeID,
		DeviceID:     deviceID,
		Event:        event,
		WorkLocation: rec.WorkLocation,
		Location:     *result.Location,
		WithinOffice: result.IsWithinOffice,
		Timestamp:    result.Location.CapturedAt.Unix(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "publish attendance event failed",
			"record_id", rec.ID,
			"event", event,
			"error", err,
		)
	}
}

package database

import (
	"context"
	"time"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

type AttendanceRepository interface {
	Insert(ctx context.Context, rec *domain.AttendanceRecord) error
	GetOpen(ctx context.Context, employeeID string) (*domain.AttendanceRecord, error)
	CloseRecord(ctx context.Context, recordID, deviceID string, at time.Time, point domain.GeoPoint) error
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AttendanceRecord, error)
}

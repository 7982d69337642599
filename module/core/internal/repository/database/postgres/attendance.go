package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/database"
)

var _ database.AttendanceRepository = (*AttendanceRepo)(nil)

// uniqueViolation is raised by idx_attendance_one_open when an employee
// already has an open record.
const uniqueViolation = pq.ErrorCode("23505")

const attendanceColumns = `id, employee_id, device_id, work_location, check_in_at, check_in_lat, check_in_lon, check_in_accuracy, distance_meters, within_office, check_out_at, check_out_lat, check_out_lon, check_out_device_id`

type AttendanceRepo struct {
	db *sql.DB
}

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

func (r *AttendanceRepo) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	var distance sql.NullInt64
	if rec.DistanceMeters != nil {
		distance = sql.NullInt64{Int64: int64(*rec.DistanceMeters), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_records (id, employee_id, device_id, work_location, check_in_at, check_in_lat, check_in_lon, check_in_accuracy, distance_meters, within_office) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.EmployeeID, rec.DeviceID, string(rec.WorkLocation), rec.CheckInAt,
		rec.CheckInPoint.Lat, rec.CheckInPoint.Lon, rec.CheckInAcc, distance, rec.WithinOffice,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyCheckedIn
	}
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// GetOpen returns the employee's record that has no check-out yet, or nil.
func (r *AttendanceRepo) GetOpen(ctx context.Context, employeeID string) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE employee_id = $1 AND check_out_at IS NULL ORDER BY check_in_at DESC LIMIT 1`,
		employeeID,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open attendance: %w", err)
	}
	return rec, nil
}

func (r *AttendanceRepo) CloseRecord(ctx context.Context, recordID, deviceID string, at time.Time, point domain.GeoPoint) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attendance_records SET check_out_at = $2, check_out_lat = $3, check_out_lon = $4, check_out_device_id = $5 WHERE id = $1 AND check_out_at IS NULL`,
		recordID, at, point.Lat, point.Lon, deviceID,
	)
	if err != nil {
		return fmt.Errorf("close attendance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close attendance: %w", err)
	}
	if n == 0 {
		return domain.ErrNotCheckedIn
	}
	return nil
}

func (r *AttendanceRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE employee_id = $1 AND check_in_at >= $2 AND check_in_at <= $3 ORDER BY check_in_at ASC`,
		query.EmployeeID, query.Start, query.End,
	)
	if err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("attendance history: %w", err)
		}
		results = append(results, *rec)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.AttendanceRecord, error) {
	var (
		rec          domain.AttendanceRecord
		workLocation string
		distance     sql.NullInt64
		checkOutAt   sql.NullTime
		checkOutLat  sql.NullFloat64
		checkOutLon  sql.NullFloat64
		checkOutDev  sql.NullString
	)
	if err := s.Scan(
		&rec.ID, &rec.EmployeeID, &rec.DeviceID, &workLocation, &rec.CheckInAt,
		&rec.CheckInPoint.Lat, &rec.CheckInPoint.Lon, &rec.CheckInAcc,
		&distance, &rec.WithinOffice, &checkOutAt, &checkOutLat, &checkOutLon, &checkOutDev,
	); err != nil {
		return nil, err
	}

	rec.WorkLocation = domain.WorkLocation(workLocation)
	if distance.Valid {
		d := int(distance.Int64)
		rec.DistanceMeters = &d
	}
	if checkOutAt.Valid {
		t := checkOutAt.Time
		rec.CheckOutAt = &t
	}
	if checkOutLat.Valid && checkOutLon.Valid {
		rec.CheckOutPoint = &domain.GeoPoint{Lat: checkOutLat.Float64, Lon: checkOutLon.Float64}
	}
	if checkOutDev.Valid {
		d := checkOutDev.String
		rec.CheckOutDevice = &d
	}
	return &rec, nil
}

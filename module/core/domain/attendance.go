package domain

import "time"

type WorkLocation string

const (
	WorkLocationOffice WorkLocation = "office"
	WorkLocationRemote WorkLocation = "remote"
)

type ValidationResult struct {
	Success        bool            `json:"success"`
	Location       *LocationSample `json:"location,omitempty"`
	DistanceMeters *int            `json:"distance,omitempty"`
	IsWithinOffice bool            `json:"isWithinOffice"`
	Message        string          `json:"message"`
	Error          string          `json:"error,omitempty"`
}

type AttendanceRecord struct {
	ID             string       `json:"id"`
	EmployeeID     string       `json:"employee_id"`
	DeviceID       string       `json:"device_id"`
	WorkLocation   WorkLocation `json:"work_location"`
	CheckInAt      time.Time    `json:"check_in_at"`
	CheckInPoint   GeoPoint     `json:"check_in_point"`
	CheckInAcc     float64      `json:"check_in_accuracy"`
	DistanceMeters *int         `json:"distance_meters,omitempty"`
	WithinOffice   bool         `json:"within_office"`
	CheckOutAt     *time.Time   `json:"check_out_at,omitempty"`
	CheckOutPoint  *GeoPoint    `json:"check_out_point,omitempty"`
	CheckOutDevice *string      `json:"check_out_device_id,omitempty"`
}

type AttendanceEventType string

const (
	AttendanceCheckIn  AttendanceEventType = "check_in"
	AttendanceCheckOut AttendanceEventType = "check_out"
)

type AttendanceEvent struct {
	RecordID     string              `json:"record_id"`
	EmployeeID   string              `json:"employee_id"`
	DeviceID     string              `json:"device_id"`
	Event        AttendanceEventType `json:"event"`
	WorkLocation WorkLocation        `json:"work_location"`
	Location     LocationSample      `json:"location"`
	WithinOffice bool                `json:"within_office"`
	Timestamp    int64               `json:"timestamp"`
}

type HistoryQuery struct {
	EmployeeID string
	Start      time.Time
	End        time.Time
}

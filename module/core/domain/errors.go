package domain

import "errors"

type LocationErrorCode int

const (
	LocationUnknown LocationErrorCode = iota
	LocationPermissionDenied
	LocationPositionUnavailable
	LocationTimeout
	LocationUnsupported
)

func (c LocationErrorCode) String() string {
	switch c {
	case LocationPermissionDenied:
		return "permission_denied"
	case LocationPositionUnavailable:
		return "position_unavailable"
	case LocationTimeout:
		return "timeout"
	case LocationUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// LocationError is returned by location acquisition. Its Error text is meant
// to be shown to the employee as-is.
type LocationError struct {
	Code LocationErrorCode
	Err  error
}

func (e *LocationError) Error() string {
	switch e.Code {
	case LocationPermissionDenied:
		return "Location access denied. Please enable location permissions."
	case LocationPositionUnavailable:
		return "Location unavailable. Please ensure GPS is enabled."
	case LocationTimeout:
		return "Location request timed out. Please try again."
	case LocationUnsupported:
		return "Geolocation not supported"
	}
	return "Unknown location error occurred."
}

func (e *LocationError) Unwrap() error { return e.Err }

// Is matches on code only, so a wrapped cause does not affect errors.Is.
func (e *LocationError) Is(target error) bool {
	var t *LocationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrPermissionDenied    = &LocationError{Code: LocationPermissionDenied}
	ErrPositionUnavailable = &LocationError{Code: LocationPositionUnavailable}
	ErrTimeout             = &LocationError{Code: LocationTimeout}
	ErrUnsupported         = &LocationError{Code: LocationUnsupported}
	ErrUnknownLocation     = &LocationError{Code: LocationUnknown}
)

var (
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNotCheckedIn     = errors.New("not checked in")
)

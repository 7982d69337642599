package domain

import "time"

type LocationSample struct {
	Point          GeoPoint  `json:"point"`
	AccuracyMeters float64   `json:"accuracy"`
	CapturedAt     time.Time `json:"timestamp"`
}

type AcquireOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCacheAge  time.Duration
}

// DefaultAcquireOptions always asks for a fresh high-accuracy fix.
func DefaultAcquireOptions() AcquireOptions {
	return AcquireOptions{
		HighAccuracy: true,
		Timeout:      15 * time.Second,
		MaxCacheAge:  0,
	}
}

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

func ParsePermissionState(s string) (PermissionState, bool) {
	switch PermissionState(s) {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return PermissionState(s), true
	}
	return PermissionPrompt, false
}

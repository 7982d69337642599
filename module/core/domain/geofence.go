package domain

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

type GeofenceConfig struct {
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius_meters"`
}

// DefaultGeofence returns the head office geofence. It is returned by value so
// callers can tweak their copy without touching the process-wide default.
func DefaultGeofence() GeofenceConfig {
	return GeofenceConfig{
		Center:       GeoPoint{Lat: 5.767477, Lon: -0.180019},
		RadiusMeters: 100,
	}
}

type GeofenceVerdict struct {
	WithinRange    bool   `json:"within_range"`
	DistanceMeters int    `json:"distance_meters"`
	Message        string `json:"message"`
}

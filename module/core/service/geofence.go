package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

const earthRadiusMeters = 6371000

const withinOfficeMessage = "You are within the office area."

type GeofenceService struct {
	geofence domain.GeofenceConfig
}

func NewGeofenceService(geofence domain.GeofenceConfig) *GeofenceService {
	return &GeofenceService{geofence: geofence}
}

// Geofence returns the configured office geofence.
func (s *GeofenceService) Geofence() domain.GeofenceConfig {
	return s.geofence
}

func (s *GeofenceService) Evaluate(sample domain.GeoPoint, cfg domain.GeofenceConfig) domain.GeofenceVerdict {
	return Evaluate(sample, cfg)
}

// Distance is the great-circle distance in meters between a and b.
func Distance(a, b domain.GeoPoint) float64 {
	return haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Evaluate checks sample against cfg. A point exactly on the radius is inside.
func Evaluate(sample domain.GeoPoint, cfg domain.GeofenceConfig) domain.GeofenceVerdict {
	dist := Distance(sample, cfg.Center)
	rounded := int(math.Round(dist))

	if dist <= cfg.RadiusMeters {
		return domain.GeofenceVerdict{
			WithinRange:    true,
			DistanceMeters: rounded,
			Message:        withinOfficeMessage,
		}
	}

	return domain.GeofenceVerdict{
		WithinRange:    false,
		DistanceMeters: rounded,
		Message: fmt.Sprintf("You are %dm away from the office. Please move within %sm to check in.",
			rounded, strconv.FormatFloat(cfg.RadiusMeters, 'f', -1, 64)),
	}
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

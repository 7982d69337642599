package config

import (
	"testing"
	"time"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

func TestGeofence_Defaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.Geofence(); got != domain.DefaultGeofence() {
		t.Errorf("expected default geofence, got %+v", got)
	}
}

func TestGeofence_Overrides(t *testing.T) {
	cfg := &Config{OfficeLatitude: "-6.2088", OfficeLongitude: "106.8456", OfficeRadius: "250"}

	got := cfg.Geofence()
	if got.Center.Lat != -6.2088 || got.Center.Lon != 106.8456 || got.RadiusMeters != 250 {
		t.Errorf("unexpected geofence %+v", got)
	}
}

func TestGeofence_IgnoresInvalidRadius(t *testing.T) {
	for _, radius := range []string{"abc", "0", "-10"} {
		cfg := &Config{OfficeRadius: radius}
		if got := cfg.Geofence().RadiusMeters; got != 100 {
			t.Errorf("radius %q: expected 100, got %f", radius, got)
		}
	}
}

func TestAcquireOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		timeout  time.Duration
		accurate bool
	}{
		{"defaults", Config{}, 15 * time.Second, true},
		{"custom timeout", Config{LocationTimeout: "30s"}, 30 * time.Second, true},
		{"bad timeout", Config{LocationTimeout: "soon"}, 15 * time.Second, true},
		{"low accuracy", Config{LocationAccuracy: "false"}, 15 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.cfg.AcquireOptions()
			if opts.Timeout != tt.timeout || opts.HighAccuracy != tt.accurate || opts.MaxCacheAge != 0 {
				t.Errorf("unexpected options %+v", opts)
			}
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OFFICE_RADIUS_METERS", "75")

	cfg := Load()
	if cfg.HTTPPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.HTTPPort)
	}
	if cfg.Geofence().RadiusMeters != 75 {
		t.Errorf("expected radius 75, got %f", cfg.Geofence().RadiusMeters)
	}
}

func TestAMQPConfig_ConnectionName(t *testing.T) {
	t.Setenv("MQTT_CLIENT_ID", "mqtt-node-7")
	t.Setenv("RABBITMQ_CONNECTION_NAME", "")

	cfg := Load()
	if cfg.RabbitMQName != "hr-checkin-server" {
		t.Fatalf("expected default connection name, got %q", cfg.RabbitMQName)
	}
	if got := amqpConfig(cfg).Properties["connection_name"]; got != "hr-checkin-server" {
		t.Errorf("expected hr-checkin-server, got %v", got)
	}

	t.Setenv("RABBITMQ_CONNECTION_NAME", "hr-checkin-eu")
	if got := amqpConfig(Load()).Properties["connection_name"]; got != "hr-checkin-eu" {
		t.Errorf("expected hr-checkin-eu, got %v", got)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/sensor"
)

type mockEvaluator struct {
	geofence domain.GeofenceConfig
	calls    int
	lastCfg  domain.GeofenceConfig
}

func (m *mockEvaluator) Geofence() domain.GeofenceConfig { return m.geofence }

func (m *mockEvaluator) Evaluate(sample domain.GeoPoint, cfg domain.GeofenceConfig) domain.GeofenceVerdict {
	m.calls++
	m.lastCfg = cfg
	return Evaluate(sample, cfg)
}

type recordedValidation struct {
	workLocation string
	outcome      string
}

type mockRecorder struct {
	observed []recordedValidation
}

func (m *mockRecorder) ObserveValidation(workLocation, outcome string, _ time.Duration) {
	m.observed = append(m.observed, recordedValidation{workLocation, outcome})
}

func newValidation(s sensor.PositionSensor, eval *mockEvaluator, rec *mockRecorder) *ValidationService {
	var r validationRecorder
	if rec != nil {
		r = rec
	}
	return NewValidationService(NewLocationAcquirer(s), eval, domain.DefaultAcquireOptions(), r)
}

func TestValidate_OfficeInside(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	rec := &mockRecorder{}
	svc := newValidation(fixAfter(0, sensor.Fix{Lat: office.Lat, Lon: office.Lon, Accuracy: 5}), eval, rec)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationOffice)

	if !res.Success || !res.IsWithinOffice {
		t.Fatalf("expected success within office, got %+v", res)
	}
	if res.DistanceMeters == nil || *res.DistanceMeters != 0 {
		t.Errorf("expected distance 0, got %v", res.DistanceMeters)
	}
	if res.Location == nil || res.Location.Point != office {
		t.Errorf("expected location %v, got %+v", office, res.Location)
	}
	if res.Error != "" {
		t.Errorf("expected no error, got %q", res.Error)
	}
	if eval.calls != 1 {
		t.Errorf("expected 1 evaluation, got %d", eval.calls)
	}
	if len(rec.observed) != 1 || rec.observed[0].outcome != "inside" {
		t.Errorf("unexpected recorded outcomes %+v", rec.observed)
	}
}

func TestValidate_OfficeOutsideIsNotAnError(t *testing.T) {
	far := eastOf(office, 500)
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	rec := &mockRecorder{}
	svc := newValidation(fixAfter(0, sensor.Fix{Lat: far.Lat, Lon: far.Lon}), eval, rec)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationOffice)

	if res.Success || res.IsWithinOffice {
		t.Fatalf("expected outside verdict, got %+v", res)
	}
	if res.Error != "" {
		t.Errorf("outside geofence must not carry an error, got %q", res.Error)
	}
	if res.DistanceMeters == nil || *res.DistanceMeters != 500 {
		t.Errorf("expected distance 500, got %v", res.DistanceMeters)
	}
	if res.Location == nil {
		t.Error("expected the captured location")
	}
	if len(rec.observed) != 1 || rec.observed[0].outcome != "outside" {
		t.Errorf("unexpected recorded outcomes %+v", rec.observed)
	}
}

func TestValidate_RemoteBypassesGeofence(t *testing.T) {
	far := eastOf(office, 50000)
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	rec := &mockRecorder{}
	svc := newValidation(fixAfter(0, sensor.Fix{Lat: far.Lat, Lon: far.Lon}), eval, rec)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationRemote)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.IsWithinOffice {
		t.Error("remote work is never within office")
	}
	if res.Message != "Location captured for remote work" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if res.DistanceMeters != nil {
		t.Errorf("expected no distance, got %d", *res.DistanceMeters)
	}
	if eval.calls != 0 {
		t.Fatalf("expected no evaluation for remote work, got %d", eval.calls)
	}
	if len(rec.observed) != 1 || rec.observed[0] != (recordedValidation{"remote", "located"}) {
		t.Errorf("unexpected recorded outcomes %+v", rec.observed)
	}
}

func TestValidate_AcquisitionFailureSkipsEvaluation(t *testing.T) {
	for _, wl := range []domain.WorkLocation{domain.WorkLocationOffice, domain.WorkLocationRemote} {
		t.Run(string(wl), func(t *testing.T) {
			eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
			rec := &mockRecorder{}
			svc := newValidation(failWith(sensor.CodePermissionDenied), eval, rec)

			res := svc.Validate(context.Background(), "DEV42", wl)

			if res.Success {
				t.Fatal("expected failure")
			}
			want := "Location access denied. Please enable location permissions."
			if res.Error != want || res.Message != want {
				t.Errorf("expected error and message %q, got %+v", want, res)
			}
			if res.Location != nil || res.DistanceMeters != nil {
				t.Errorf("expected no location data, got %+v", res)
			}
			if eval.calls != 0 {
				t.Errorf("expected no evaluation, got %d", eval.calls)
			}
			if len(rec.observed) != 1 || rec.observed[0].outcome != "failed" {
				t.Errorf("unexpected recorded outcomes %+v", rec.observed)
			}
		})
	}
}

func TestValidate_TimeoutResolvesWithMessage(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	svc := newValidation(failWith(sensor.CodeTimeout), eval, nil)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationOffice)

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "Location request timed out. Please try again." {
		t.Errorf("unexpected error %q", res.Error)
	}
}

func TestValidate_AcquirerTimeoutBound(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	opts := domain.DefaultAcquireOptions()
	opts.Timeout = 20 * time.Millisecond
	svc := NewValidationService(NewLocationAcquirer(silentSensor()), eval, opts, nil)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationOffice)

	if res.Error != "Location request timed out. Please try again." {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestValidate_RemoteWaitsForSlowFix(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	svc := newValidation(fixAfter(100*time.Millisecond, sensor.Fix{Lat: 1, Lon: 1}), eval, nil)

	started := time.Now()
	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationRemote)
	elapsed := time.Since(started)

	if !res.Success || res.IsWithinOffice {
		t.Fatalf("unexpected result %+v", res)
	}
	if elapsed < 100*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("expected to resolve right after the fix, took %v", elapsed)
	}
}

func TestValidate_UnsupportedDevice(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	svc := NewValidationService(NewLocationAcquirer(nil), eval, domain.DefaultAcquireOptions(), nil)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocationOffice)

	if res.Success || res.Error != "Geolocation not supported" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestValidateWithin_OverridesGeofence(t *testing.T) {
	far := eastOf(office, 500)
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	svc := newValidation(fixAfter(0, sensor.Fix{Lat: far.Lat, Lon: far.Lon}), eval, nil)

	wide := domain.GeofenceConfig{Center: office, RadiusMeters: 1000}
	res := svc.ValidateWithin(context.Background(), "DEV42", domain.WorkLocationOffice, wide)

	if !res.Success || !res.IsWithinOffice {
		t.Fatalf("expected success with the wider geofence, got %+v", res)
	}
	if eval.lastCfg != wide {
		t.Errorf("expected override %+v, got %+v", wide, eval.lastCfg)
	}
}

func TestValidate_UnknownWorkLocationTreatedAsOffice(t *testing.T) {
	eval := &mockEvaluator{geofence: domain.DefaultGeofence()}
	svc := newValidation(fixAfter(0, sensor.Fix{Lat: office.Lat, Lon: office.Lon}), eval, nil)

	res := svc.Validate(context.Background(), "DEV42", domain.WorkLocation("hybrid"))

	if eval.calls != 1 {
		t.Fatalf("expected geofence evaluation, got %d calls", eval.calls)
	}
	if !res.IsWithinOffice {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestValidate_MetricLabelIsBounded(t *testing.T) {
	tests := []struct {
		workLocation domain.WorkLocation
		fix          sensor.PositionSensor
		want         recordedValidation
	}{
		{"hybrid", fixAfter(0, sensor.Fix{Lat: office.Lat, Lon: office.Lon}), recordedValidation{"office", "inside"}},
		{"", fixAfter(0, sensor.Fix{Lat: office.Lat, Lon: office.Lon}), recordedValidation{"office", "inside"}},
		{"OFFICE-42", failWith(sensor.CodePermissionDenied), recordedValidation{"office", "failed"}},
		{domain.WorkLocationRemote, fixAfter(0, sensor.Fix{Lat: office.Lat, Lon: office.Lon}), recordedValidation{"remote", "located"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.workLocation), func(t *testing.T) {
			rec := &mockRecorder{}
			svc := newValidation(tt.fix, &mockEvaluator{geofence: domain.DefaultGeofence()}, rec)

			svc.Validate(context.Background(), "DEV42", tt.workLocation)

			if len(rec.observed) != 1 || rec.observed[0] != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, rec.observed)
			}
		})
	}
}

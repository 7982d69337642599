package core

import (
	"database/sql"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/hr-checkin/module/core/domain"
	handler "github.com/nandanugg/hr-checkin/module/core/internal/handler/http"
	"github.com/nandanugg/hr-checkin/module/core/internal/metrics"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/hr-checkin/module/core/internal/repository/publisher/rabbitmq"
	mqttsensor "github.com/nandanugg/hr-checkin/module/core/internal/repository/sensor/mqtt"
	"github.com/nandanugg/hr-checkin/module/core/service"
)

type Options struct {
	Geofence  domain.GeofenceConfig
	Acquire   domain.AcquireOptions
	JWTSecret []byte
	Registry  prometheus.Registerer
	Logger    *slog.Logger
}

type Module struct {
	ValidationSvc *service.ValidationService
	AttendanceSvc *service.AttendanceService
	PermissionSvc *service.PermissionService
	GeofenceSvc   *service.GeofenceService
	handler       *handler.AttendanceHandler
	sensor        *mqttsensor.DeviceSensor
	jwtSecret     []byte
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	attendanceRepo := postgres.NewAttendanceRepo(db)

	attendancePub, err := rabbitmq.NewAttendancePublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("attendance publisher: %w", err)
	}

	m := metrics.New(opts.Registry)
	deviceSensor := mqttsensor.NewDeviceSensor(mqttClient, opts.Logger)

	geofenceSvc := service.NewGeofenceService(opts.Geofence)
	acquirer := service.NewLocationAcquirer(deviceSensor)
	validationSvc := service.NewValidationService(acquirer, geofenceSvc, opts.Acquire, m)
	permissionSvc := service.NewPermissionService(deviceSensor, opts.Logger)
	attendanceSvc := service.NewAttendanceService(validationSvc, attendanceRepo, attendancePub, m, opts.Logger)

	h := handler.NewAttendanceHandler(attendanceSvc, validationSvc, permissionSvc, geofenceSvc)

	return &Module{
		ValidationSvc: validationSvc,
		AttendanceSvc: attendanceSvc,
		PermissionSvc: permissionSvc,
		GeofenceSvc:   geofenceSvc,
		handler:       h,
		sensor:        deviceSensor,
		jwtSecret:     opts.JWTSecret,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r.Group("", handler.RequireEmployee(m.jwtSecret)))
}

// StartSubscribers subscribes to device responses. Call again after a broker
// reconnect.
func (m *Module) StartSubscribers() error {
	return m.sensor.Start()
}

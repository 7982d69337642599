package main

import (
	"os"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nandanugg/hr-checkin/config"
	"github.com/nandanugg/hr-checkin/module/core"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	fatal := func(msg string, err error) {
		logger.Error(msg, "error", err)
		os.Exit(1)
	}

	db, err := config.NewPostgres(cfg)
	if err != nil {
		fatal("postgres", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		fatal("rabbitmq", err)
	}
	defer func() { _ = amqpConn.Close() }()

	var coreModule atomic.Pointer[core.Module]
	mqttClient, err := config.NewMQTT(cfg, logger, func(mqtt.Client) {
		if m := coreModule.Load(); m != nil {
			if err := m.StartSubscribers(); err != nil {
				logger.Error("resubscribe", "error", err)
			}
		}
	})
	if err != nil {
		fatal("mqtt", err)
	}
	defer mqttClient.Disconnect(250)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := core.Build(db, amqpConn, mqttClient, core.Options{
		Geofence:  cfg.Geofence(),
		Acquire:   cfg.AcquireOptions(),
		JWTSecret: []byte(cfg.JWTSecret),
		Registry:  registry,
		Logger:    logger,
	})
	if err != nil {
		fatal("core module", err)
	}
	coreModule.Store(m)

	if err := m.StartSubscribers(); err != nil {
		fatal("start subscribers", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	m.RegisterRoutes(&r.RouterGroup)

	geofence := m.GeofenceSvc.Geofence()
	logger.Info("listening",
		"port", cfg.HTTPPort,
		"office_lat", geofence.Center.Lat,
		"office_lon", geofence.Center.Lon,
		"radius_m", geofence.RadiusMeters,
	)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		fatal("server", err)
	}
}

package config

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type probe struct {
	name  string
	check func(ctx context.Context) error
}

type HealthChecker struct {
	probes  []probe
	timeout time.Duration
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	return &HealthChecker{
		timeout: 2 * time.Second,
		probes: []probe{
			{name: "postgres", check: db.PingContext},
			{name: "rabbitmq", check: func(context.Context) error {
				if amqpConn.IsClosed() {
					return errors.New("connection closed")
				}
				return nil
			}},
			// devices cannot be reached for check-in without the broker
			{name: "mqtt", check: func(context.Context) error {
				if !mqttClient.IsConnectionOpen() {
					return errors.New("not connected")
				}
				return nil
			}},
		},
	}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for _, p := range h.probes {
		if err := p.check(ctx); err != nil {
			deps[p.name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		deps[p.name] = gin.H{"status": "up"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}

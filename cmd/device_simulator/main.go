package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	locationRequestPattern   = "/hr/device/+/location/request"
	permissionRequestPattern = "/hr/device/+/permission/request"

	officeLat = 5.767477
	officeLon = -0.180019
)

type locationRequest struct {
	RequestID    string `json:"request_id"`
	HighAccuracy bool   `json:"high_accuracy"`
	TimeoutMs    int64  `json:"timeout_ms"`
}

type response struct {
	RequestID string  `json:"request_id"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	ErrorCode int     `json:"error_code,omitempty"`
	State     string  `json:"state,omitempty"`
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type simulator struct {
	client   publisher
	logger   *slog.Logger
	farRatio float64
	errRatio float64
}

// jitter moves a point by up to meters in a random direction.
func jitter(lat, lon, meters float64) (float64, float64) {
	d := rand.Float64() * meters
	bearing := rand.Float64() * 2 * math.Pi
	dLat := d * math.Cos(bearing) / 111320
	dLon := d * math.Sin(bearing) / (111320 * math.Cos(lat*math.Pi/180))
	return lat + dLat, lon + dLon
}

func deviceID(topic string) string {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func (s *simulator) reply(topic string, resp response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode reply", "topic", topic, "error", err)
		return
	}
	token := s.client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error("publish reply", "topic", topic, "error", err)
		return
	}
	s.logger.Info("replied", "topic", topic, "payload", string(payload))
}

func (s *simulator) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	var req locationRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.logger.Warn("invalid location request", "error", err)
		return
	}
	id := deviceID(msg.Topic())
	replyTopic := fmt.Sprintf("/hr/device/%s/location/response", id)

	// answer after a realistic GPS delay
	go func() {
		time.Sleep(time.Duration(500+rand.Intn(2000)) * time.Millisecond)

		if rand.Float64() < s.errRatio {
			s.reply(replyTopic, response{RequestID: req.RequestID, ErrorCode: 1 + rand.Intn(3)})
			return
		}

		spread := 60.0
		if rand.Float64() < s.farRatio {
			spread = 2000
		}
		lat, lon := jitter(officeLat, officeLon, spread)
		accuracy := 5 + rand.Float64()*15
		if !req.HighAccuracy {
			accuracy *= 5
		}
		s.reply(replyTopic, response{RequestID: req.RequestID, Latitude: lat, Longitude: lon, Accuracy: accuracy})
	}()
}

func (s *simulator) handlePermission(_ mqtt.Client, msg mqtt.Message) {
	var req struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.logger.Warn("invalid permission request", "error", err)
		return
	}
	replyTopic := fmt.Sprintf("/hr/device/%s/permission/response", deviceID(msg.Topic()))
	go s.reply(replyTopic, response{RequestID: req.RequestID, State: "granted"})
}

func ratioArg(i int) float64 {
	if len(os.Args) <= i {
		return 0
	}
	v, err := strconv.ParseFloat(os.Args[i], 64)
	if err != nil || v < 0 || v > 1 {
		fmt.Fprintf(os.Stderr, "error: ratio must be between 0 and 1\n")
		os.Exit(1)
	}
	return v
}

func main() {
	if len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: %s [far_ratio] [error_ratio]\n", os.Args[0])
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("hr-device-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("mqtt connect", "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	sim := &simulator{client: client, logger: logger, farRatio: ratioArg(1), errRatio: ratioArg(2)}

	for pattern, handler := range map[string]mqtt.MessageHandler{
		locationRequestPattern:   sim.handleLocation,
		permissionRequestPattern: sim.handlePermission,
	} {
		if token := client.Subscribe(pattern, 1, handler); token.Wait() && token.Error() != nil {
			logger.Error("subscribe", "topic", pattern, "error", token.Error())
			os.Exit(1)
		}
	}

	logger.Info("device simulator ready", "broker", broker, "far_ratio", sim.farRatio, "error_ratio", sim.errRatio)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
}

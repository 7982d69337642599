package config

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

func NewRabbitMQ(cfg *Config) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(cfg.RabbitMQURL, amqpConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}

// amqpConfig names the connection so the broker UI can tell it apart.
func amqpConfig(cfg *Config) amqp.Config {
	return amqp.Config{
		Properties: amqp.Table{"connection_name": cfg.RabbitMQName},
	}
}

// Package broker connects to the MQTT broker shared by orientation sources
// and display publishers.
package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mihrab.noorapp.org/internal/logging"
)

const DefaultConnectTimeout = 10 * time.Second

// Options describes how to reach the broker.
type Options struct {
	Broker         string
	ClientID       string
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

// ClientOptions builds the paho options for o.
func ClientOptions(o Options) *mqtt.ClientOptions {
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	logger := logging.Component(o.Logger, "mqtt")

	return mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logging.LogError(logger, "mqtt connection lost", err, slog.String("broker", o.Broker))
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logger.Info("mqtt connected", slog.String("broker", o.Broker), slog.String("client_id", o.ClientID))
		})
}

// Connect dials the broker and waits for the connection to be established.
func Connect(o Options) (mqtt.Client, error) {
	if o.Broker == "" {
		return nil, errors.New("mqtt broker address is required")
	}
	opts := ClientOptions(o)
	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out after %s", o.Broker, opts.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", o.Broker, err)
	}
	return client, nil
}

// WaitToken waits up to timeout for token and returns its error.
func WaitToken(token mqtt.Token, timeout time.Duration, op string) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%s: timed out after %s", op, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

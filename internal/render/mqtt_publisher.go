package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mihrab.noorapp.org/internal/broker"
	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
)

// Publisher is the part of mqtt.Client the publisher uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes each snapshot as retained JSON, so a display that
// subscribes late still gets the current state.
type MQTTPublisher struct {
	client  Publisher
	topic   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewMQTTPublisher(client Publisher, topic string, logger *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client:  client,
		topic:   topic,
		timeout: 5 * time.Second,
		logger:  logging.Component(logger, "render_mqtt"),
	}
}

func (p *MQTTPublisher) Render(snap qibla.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logging.LogError(p.logger, "failed to encode snapshot", err)
		return
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if err := broker.WaitToken(token, p.timeout, fmt.Sprintf("publish %s", p.topic)); err != nil {
		logging.LogError(p.logger, "failed to publish snapshot", err, slog.String("topic", p.topic))
	}
}

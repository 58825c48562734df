package orientation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mihrab.noorapp.org/internal/broker"
	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
)

// Subscriber is the part of mqtt.Client the source uses.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// MQTTSource receives RawEvent JSON payloads published on a topic, for
// example by a phone or a magnetometer bridge.
type MQTTSource struct {
	client  Subscriber
	topic   string
	qos     byte
	timeout time.Duration
	logger  *slog.Logger
}

func NewMQTTSource(client Subscriber, topic string, logger *slog.Logger) *MQTTSource {
	return &MQTTSource{
		client:  client,
		topic:   topic,
		timeout: 5 * time.Second,
		logger:  logging.Component(logger, "orientation_mqtt"),
	}
}

// Subscribe delivers decoded events to handler in arrival order. Payloads that
// do not decode are logged and dropped.
func (s *MQTTSource) Subscribe(handler func(qibla.Event)) (func(), error) {
	token := s.client.Subscribe(s.topic, s.qos, func(_ mqtt.Client, msg mqtt.Message) {
		ev, err := DecodeEvent(msg.Payload())
		if err != nil {
			s.logger.Warn("dropping orientation payload",
				slog.String("topic", msg.Topic()),
				slog.String("error", err.Error()))
			return
		}
		handler(ev)
	})
	if err := broker.WaitToken(token, s.timeout, fmt.Sprintf("subscribe %s", s.topic)); err != nil {
		return nil, err
	}
	s.logger.Info("subscribed to orientation topic", slog.String("topic", s.topic))

	var once sync.Once
	return func() {
		once.Do(func() {
			token := s.client.Unsubscribe(s.topic)
			if err := broker.WaitToken(token, s.timeout, fmt.Sprintf("unsubscribe %s", s.topic)); err != nil {
				logging.LogError(s.logger, "failed to unsubscribe", err, slog.String("topic", s.topic))
			}
		})
	}, nil
}

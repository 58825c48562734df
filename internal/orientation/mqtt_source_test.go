package orientation

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mihrab.noorapp.org/internal/broker"
	"mihrab.noorapp.org/internal/qibla"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeSubscriber struct {
	mu           sync.Mutex
	callbacks    map[string]mqtt.MessageHandler
	unsubscribed []string
	subscribeErr error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{callbacks: map[string]mqtt.MessageHandler{}}
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	if f.subscribeErr != nil {
		return broker.NewDoneToken(f.subscribeErr)
	}
	f.mu.Lock()
	f.callbacks[topic] = callback
	f.mu.Unlock()
	return broker.NewDoneToken(nil)
}

func (f *fakeSubscriber) Unsubscribe(topics ...string) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, topic := range topics {
		delete(f.callbacks, topic)
		f.unsubscribed = append(f.unsubscribed, topic)
	}
	return broker.NewDoneToken(nil)
}

func (f *fakeSubscriber) publish(topic, payload string) bool {
	f.mu.Lock()
	callback, ok := f.callbacks[topic]
	f.mu.Unlock()
	if !ok {
		return false
	}
	callback(nil, fakeMessage{topic: topic, payload: []byte(payload)})
	return true
}

func TestMQTTSourceDeliversEventsInOrder(t *testing.T) {
	client := newFakeSubscriber()
	var logs bytes.Buffer
	source := NewMQTTSource(client, "mihrab/heading", slog.New(slog.NewJSONHandler(&logs, nil)))

	var got []qibla.Event
	stop, err := source.Subscribe(func(ev qibla.Event) { got = append(got, ev) })
	require.NoError(t, err)

	require.True(t, client.publish("mihrab/heading", `{"webkitCompassHeading": 10}`))
	require.True(t, client.publish("mihrab/heading", `not json`))
	require.True(t, client.publish("mihrab/heading", `{"alpha": 20, "absolute": true}`))

	assert.Equal(t, []qibla.Event{
		qibla.CompassHeadingEvent{Heading: 10},
		qibla.AbsoluteAlphaEvent{Alpha: 20},
	}, got)
	assert.Contains(t, logs.String(), "dropping orientation payload")

	stop()
	stop()
	assert.Equal(t, []string{"mihrab/heading"}, client.unsubscribed)
	assert.False(t, client.publish("mihrab/heading", `{"webkitCompassHeading": 30}`))
}

func TestMQTTSourceSubscribeFailure(t *testing.T) {
	client := newFakeSubscriber()
	client.subscribeErr = errors.New("not authorised")

	stop, err := NewMQTTSource(client, "mihrab/heading", nil).Subscribe(func(qibla.Event) {})
	assert.Nil(t, stop)
	assert.ErrorContains(t, err, "not authorised")
}

func TestMQTTSourceDrivesEngine(t *testing.T) {
	client := newFakeSubscriber()
	engine := qibla.NewEngine(qibla.Options{Normalize: qibla.DefaultNormalizeOptions()})
	_, err := engine.SetObserver(qibla.GeoCoordinate{Latitude: 30.033, Longitude: 31.233})
	require.NoError(t, err)

	stop, err := engine.StartOrientation(t.Context(), NewMQTTSource(client, "mihrab/heading", nil), AlwaysGranted{})
	require.NoError(t, err)
	defer stop()

	require.True(t, client.publish("mihrab/heading", `{"webkitCompassHeading": 40}`))

	snap := engine.Snapshot()
	require.NotNil(t, snap.Display.ArrowRotation)
	assert.InDelta(t, snap.Bearing.QiblaDirection-40, *snap.Display.ArrowRotation, 1e-9)
	assert.InDelta(t, 320.0, snap.Display.CompassRotation, 1e-9)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"mihrab.noorapp.org/internal/broker"
	"mihrab.noorapp.org/internal/orientation"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

var (
	watchBroker   string
	watchTopic    string
	watchClientID string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the display snapshots a server publishes over MQTT until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, err := broker.Connect(broker.Options{
		Broker:   watchBroker,
		ClientID: watchClientID,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchSnapshots(ctx, client, watchTopic, cmd.OutOrStdout())
}

// watchSnapshots prints one line per snapshot received on topic until ctx
// is done.
func watchSnapshots(ctx context.Context, sub orientation.Subscriber, topic string, w io.Writer) error {
	lines := make(chan string, 16)
	token := sub.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var snap qibla.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			logger.Warn("dropping snapshot payload", "topic", msg.Topic(), "error", err)
			return
		}
		select {
		case lines <- formatSnapshot(snap):
		default:
			logger.Warn("output is behind, dropping snapshot", "topic", msg.Topic())
		}
	})
	if err := broker.WaitToken(token, 5*time.Second, "subscribe "+topic); err != nil {
		return err
	}
	defer func() {
		if err := broker.WaitToken(sub.Unsubscribe(topic), 5*time.Second, "unsubscribe "+topic); err != nil {
			logger.Warn("unsubscribe failed", "topic", topic, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
}

func formatSnapshot(snap qibla.Snapshot) string {
	line := snap.UpdatedAt.Format(time.TimeOnly)
	if snap.Bearing != nil {
		line += fmt.Sprintf(" qibla=%.2f° %s", snap.Bearing.QiblaDirection, utils.BearingToCompass(snap.Bearing.QiblaDirection))
	} else {
		line += " qibla=unknown"
	}
	if snap.Heading != nil && snap.Heading.Value != nil {
		line += fmt.Sprintf(" heading=%.2f°", *snap.Heading.Value)
	}
	line += fmt.Sprintf(" compass=%.2f°", snap.Display.CompassRotation)
	if snap.Display.ArrowRotation != nil {
		line += fmt.Sprintf(" arrow=%.2f°", *snap.Display.ArrowRotation)
	}
	if snap.LocationError != nil {
		line += " location_error=" + snap.LocationError.Kind
	}
	if snap.OrientationError != nil {
		line += " orientation_error=" + snap.OrientationError.Kind
	}
	return line
}

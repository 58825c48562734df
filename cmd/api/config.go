package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"mihrab.noorapp.org/internal/appconf"
)

// envPrefix is prepended to every flag name, upper-cased with dashes turned
// into underscores, to find its environment override: -mqtt-broker is
// MIHRAB_MQTT_BROKER.
const envPrefix = "MIHRAB_"

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// parseConfig reads flags from args. A flag that is not given on the command
// line takes its value from the environment when the variable is set.
func parseConfig(args []string, getenv func(string) string) (appconf.Config, error) {
	var cfg appconf.Config
	var envFlag, apiKeysFlag string

	fs := flag.NewFlagSet("qibla-api", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 4000, "API server port")
	fs.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format (text|json)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", 20*time.Second, "HTTP write timeout; must exceed -location-timeout")

	fs.StringVar(&cfg.PlacesDBPath, "places-db", "qibla_places.db", "Path to the SQLite places database")

	fs.StringVar(&cfg.LocationSource, "location-source", appconf.LocationStatic, "Location source (static|nmea|place)")
	fs.DurationVar(&cfg.LocationTimeout, "location-timeout", 10*time.Second, "Timeout for a single location request")
	fs.BoolVar(&cfg.HighAccuracy, "high-accuracy", false, "Require a high accuracy fix")
	fs.Float64Var(&cfg.StaticLatitude, "lat", 21.422487, "Latitude for the static location source")
	fs.Float64Var(&cfg.StaticLongitude, "lon", 39.826206, "Longitude for the static location source")
	fs.StringVar(&cfg.Place, "place", "", "Place name for the place location source")
	fs.StringVar(&cfg.SerialPort, "serial-port", "", "Serial port of the NMEA GPS receiver")
	fs.UintVar(&cfg.SerialBaudRate, "serial-baud", 9600, "Baud rate of the NMEA GPS receiver")

	fs.StringVar(&cfg.OrientationSource, "orientation-source", appconf.OrientationNone, "Orientation source (mqtt|mock|none)")
	fs.StringVar(&cfg.PermissionMode, "orientation-permission", appconf.PermissionGranted, "Orientation permission (granted|denied|unsupported)")
	fs.BoolVar(&cfg.CorrectRelative, "correct-relative", true, "Apply screen orientation correction to relative alpha")
	fs.BoolVar(&cfg.CorrectAbsolute, "correct-absolute", false, "Apply screen orientation correction to absolute alpha")
	fs.DurationVar(&cfg.MockInterval, "mock-interval", 200*time.Millisecond, "Tick interval of the mock orientation source")

	fs.StringVar(&cfg.MQTTBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	fs.StringVar(&cfg.MQTTClientID, "mqtt-client-id", "qibla-api", "MQTT client ID")
	fs.StringVar(&cfg.MQTTHeadingTopic, "mqtt-heading-topic", "mihrab/heading", "Topic carrying orientation events")
	fs.StringVar(&cfg.MQTTDisplayTopic, "mqtt-display-topic", "", "Topic to publish display snapshots to")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		if explicit[f.Name] || envErr != nil {
			return
		}
		if value := getenv(envName(f.Name)); value != "" {
			if err := fs.Set(f.Name, value); err != nil {
				envErr = fmt.Errorf("%s: %w", envName(f.Name), err)
			}
		}
	})
	if envErr != nil {
		return appconf.Config{}, envErr
	}

	cfg.Env = appconf.EnvFlagToEnvironment(envFlag)
	cfg.ApiKeys = splitKeys(apiKeysFlag)

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

func splitKeys(s string) []string {
	var keys []string
	for _, key := range strings.Split(s, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

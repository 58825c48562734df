package appconf

import (
	"errors"
	"fmt"
	"time"
)

// Location sources.
const (
	LocationStatic = "static"
	LocationNMEA   = "nmea"
	LocationPlace  = "place"
)

// Orientation sources.
const (
	OrientationMQTT = "mqtt"
	OrientationMock = "mock"
	OrientationNone = "none"
)

// Permission modes for orientation access.
const (
	PermissionGranted     = "granted"
	PermissionDenied      = "denied"
	PermissionUnsupported = "unsupported"
)

// Config holds all the configuration settings for the application.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	RateLimit int // requests per second per API key
	LogLevel  string
	LogFormat string
	// WriteTimeout bounds writing a response, counted from reading the
	// request. It must outlast a location request.
	WriteTimeout time.Duration

	PlacesDBPath string

	LocationSource  string
	LocationTimeout time.Duration
	HighAccuracy    bool
	StaticLatitude  float64
	StaticLongitude float64
	Place           string
	SerialPort      string
	SerialBaudRate  uint

	OrientationSource string
	PermissionMode    string
	CorrectRelative   bool
	CorrectAbsolute   bool
	MockInterval      time.Duration

	MQTTBroker       string
	MQTTClientID     string
	MQTTHeadingTopic string
	MQTTDisplayTopic string
}

// Validate checks the combinations of settings that cannot work together.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.WriteTimeout > 0 && c.LocationTimeout >= c.WriteTimeout {
		errs = append(errs, fmt.Errorf("location timeout %s must be shorter than the write timeout %s", c.LocationTimeout, c.WriteTimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}

	switch c.LocationSource {
	case "", LocationStatic:
	case LocationNMEA:
		if c.SerialPort == "" {
			errs = append(errs, errors.New("nmea location source requires a serial port"))
		}
	case LocationPlace:
		if c.Place == "" {
			errs = append(errs, errors.New("place location source requires a place name"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown location source %q", c.LocationSource))
	}

	switch c.OrientationSource {
	case "", OrientationNone, OrientationMock:
	case OrientationMQTT:
		if c.MQTTBroker == "" || c.MQTTHeadingTopic == "" {
			errs = append(errs, errors.New("mqtt orientation source requires a broker and a heading topic"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown orientation source %q", c.OrientationSource))
	}

	switch c.PermissionMode {
	case "", PermissionGranted, PermissionDenied, PermissionUnsupported:
	default:
		errs = append(errs, fmt.Errorf("unknown permission mode %q", c.PermissionMode))
	}

	if c.Env == Test && c.PlacesDBPath != "" && c.PlacesDBPath != ":memory:" {
		errs = append(errs, errors.New("test environment must use an in-memory places database"))
	}

	return errors.Join(errs...)
}

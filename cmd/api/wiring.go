package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mihrab.noorapp.org/internal/app"
	"mihrab.noorapp.org/internal/appconf"
	"mihrab.noorapp.org/internal/broker"
	"mihrab.noorapp.org/internal/geolocation"
	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/orientation"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/render"
	"mihrab.noorapp.org/internal/restapi"
	"mihrab.noorapp.org/placesdb"
)

// service is everything the server owns between startup and shutdown.
type service struct {
	app    *app.Application
	api    *restapi.RestAPI
	mqtt   mqtt.Client
	logger *slog.Logger

	stopOrientation func()
	locating        sync.WaitGroup
}

func buildService(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*service, error) {
	svc := &service{logger: logger}

	if cfg.PlacesDBPath != "" {
		places, err := placesdb.NewClient(placesdb.NewConfig(cfg.PlacesDBPath, cfg.Env, cfg.Env == appconf.Development))
		if err != nil {
			return nil, fmt.Errorf("open places database: %w", err)
		}
		places = places.WithLogger(logger)
		result, err := places.ImportSeed(ctx)
		if err != nil {
			logging.SafeCloseWithLogging(places, logger, "places database")
			return nil, fmt.Errorf("import places: %w", err)
		}
		logging.LogOperation(logger, "places_imported",
			slog.String("source", result.Source),
			slog.Int("rows", result.Rows),
			slog.Bool("skipped", result.Skipped))
		svc.app = &app.Application{Places: places}
	} else {
		svc.app = &app.Application{}
	}
	svc.app.Config = cfg
	svc.app.Logger = logger

	if cfg.MQTTBroker != "" {
		client, err := broker.Connect(broker.Options{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Logger:   logger,
		})
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.mqtt = client
	}

	locator, err := buildLocator(cfg, svc.app.Places, logger)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.app.Hub = render.NewHub(logger, render.DefaultSendBuffer)
	renderers := render.Fanout{svc.app.Hub, render.LogRenderer{Logger: logger}}
	if svc.mqtt != nil && cfg.MQTTDisplayTopic != "" {
		renderers = append(renderers, render.NewMQTTPublisher(svc.mqtt, cfg.MQTTDisplayTopic, logger))
	}

	svc.app.Engine = qibla.NewEngine(qibla.Options{
		Locator: locator,
		Normalize: qibla.NormalizeOptions{
			CorrectRelative: cfg.CorrectRelative,
			CorrectAbsolute: cfg.CorrectAbsolute,
		},
		LocationTimeout: cfg.LocationTimeout,
		HighAccuracy:    cfg.HighAccuracy,
		Logger:          logger,
		Renderers:       []qibla.Renderer{renderers},
	})

	svc.api = restapi.NewRestAPI(svc.app)
	return svc, nil
}

func buildLocator(cfg appconf.Config, places *placesdb.Client, logger *slog.Logger) (qibla.LocationProvider, error) {
	switch cfg.LocationSource {
	case appconf.LocationNMEA:
		return geolocation.NewNMEA(geolocation.SerialOpener(cfg.SerialPort, cfg.SerialBaudRate), logger), nil
	case appconf.LocationPlace:
		if places == nil {
			return nil, errors.New("place location source requires a places database")
		}
		return geolocation.NewPlace(places, cfg.Place), nil
	default:
		locator, err := geolocation.NewStatic(qibla.GeoCoordinate{
			Latitude:  cfg.StaticLatitude,
			Longitude: cfg.StaticLongitude,
		})
		if err != nil {
			return nil, err
		}
		return locator, nil
	}
}

func (s *service) orientationSource() qibla.OrientationSource {
	switch s.app.Config.OrientationSource {
	case appconf.OrientationMQTT:
		if s.mqtt == nil {
			return nil
		}
		return orientation.NewMQTTSource(s.mqtt, s.app.Config.MQTTHeadingTopic, s.logger)
	case appconf.OrientationMock:
		return orientation.NewMockSource(s.app.Config.MockInterval)
	default:
		return nil
	}
}

// start requests the first fix in the background and subscribes to
// orientation events. Neither failure stops the server; both are recorded
// in the engine state.
func (s *service) start(ctx context.Context) error {
	s.locating.Add(1)
	go func() {
		defer s.locating.Done()
		if _, err := s.app.Engine.Locate(ctx); err != nil {
			logging.LogError(s.logger, "initial location failed", err)
		}
	}()

	if s.app.Config.OrientationSource == appconf.OrientationNone || s.app.Config.OrientationSource == "" {
		return nil
	}

	gate, err := orientation.GateForMode(s.app.Config.PermissionMode)
	if err != nil {
		return err
	}
	stop, err := s.app.Engine.StartOrientation(ctx, s.orientationSource(), gate)
	if err != nil {
		logging.LogError(s.logger, "orientation unavailable", err,
			slog.String("source", s.app.Config.OrientationSource))
		return nil
	}
	s.stopOrientation = stop
	return nil
}

// Close releases everything in the reverse order it was acquired.
func (s *service) Close() {
	if s.stopOrientation != nil {
		s.stopOrientation()
	}
	s.locating.Wait()
	if s.api != nil {
		s.api.Close()
	}
	if s.app != nil && s.app.Hub != nil {
		s.app.Hub.Close()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	if s.app != nil && s.app.Places != nil {
		logging.SafeCloseWithLogging(s.app.Places, s.logger, "places database")
	}
}

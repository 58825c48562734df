package app

import (
	"log/slog"

	"mihrab.noorapp.org/internal/appconf"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/render"
	"mihrab.noorapp.org/placesdb"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config appconf.Config
	Logger *slog.Logger

	// Engine owns the observer, bearing and heading state.
	Engine *qibla.Engine
	// Places resolves place names to coordinates. It may be nil, in which
	// case place lookups report not found.
	Places *placesdb.Client
	// Hub streams engine snapshots over WebSocket. It may be nil.
	Hub *render.Hub
}

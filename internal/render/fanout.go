package render

import (
	"log/slog"

	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
)

// Fanout passes each snapshot to every renderer in order.
type Fanout []qibla.Renderer

func (f Fanout) Render(snap qibla.Snapshot) {
	for _, r := range f {
		if r != nil {
			r.Render(snap)
		}
	}
}

// LogRenderer writes a debug line per snapshot.
type LogRenderer struct {
	Logger *slog.Logger
}

func (l LogRenderer) Render(snap qibla.Snapshot) {
	logger := logging.Component(l.Logger, "render_log")

	attrs := []any{slog.Bool("orienting", snap.Orienting)}
	if snap.Bearing != nil {
		attrs = append(attrs, slog.Float64("qibla_direction", snap.Bearing.QiblaDirection))
	}
	if snap.Heading != nil {
		if h, ok := snap.Heading.Heading(); ok {
			attrs = append(attrs, slog.Float64("heading", h))
		}
	}
	if snap.Display.ArrowRotation != nil {
		attrs = append(attrs, slog.Float64("arrow_rotation", *snap.Display.ArrowRotation))
	}
	logger.Debug("snapshot", attrs...)
}

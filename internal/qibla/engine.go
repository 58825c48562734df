package qibla

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLocationTimeout bounds a single location request.
const DefaultLocationTimeout = 10 * time.Second

// LocationOptions are passed through to the geolocation provider.
type LocationOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// LocationProvider produces a one-shot location fix.
type LocationProvider interface {
	RequestLocation(ctx context.Context, opts LocationOptions) (GeoCoordinate, error)
}

// Permission is the answer to an orientation permission prompt.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// PermissionRequester asks the platform for access to orientation events.
type PermissionRequester interface {
	RequestOrientationPermission(ctx context.Context) (Permission, error)
}

// OrientationSource delivers orientation events to handler until the
// returned stop function is called.
type OrientationSource interface {
	Subscribe(handler func(Event)) (stop func(), err error)
}

// Renderer receives a snapshot after every state change, in the order the
// changes happened. Render must not change the engine state itself.
type Renderer interface {
	Render(Snapshot)
}

// ErrorReport is the user-facing form of an engine error.
type ErrorReport struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// NewErrorReport builds a report for err; nil errors yield nil.
func NewErrorReport(err error) *ErrorReport {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	if kind == 0 {
		kind = LocationUnavailable
	}
	return &ErrorReport{
		Kind:      kind.String(),
		Message:   kind.Message(),
		Retryable: kind.Retryable(),
	}
}

// Snapshot is a copy of the engine state at one instant.
type Snapshot struct {
	Observer         *GeoCoordinate `json:"observer,omitempty"`
	Bearing          *BearingResult `json:"bearing,omitempty"`
	Heading          *HeadingSample `json:"heading,omitempty"`
	Display          DisplayState   `json:"display"`
	Orienting        bool           `json:"orienting"`
	LocationError    *ErrorReport   `json:"locationError,omitempty"`
	OrientationError *ErrorReport   `json:"orientationError,omitempty"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Options configures an Engine.
type Options struct {
	Locator         LocationProvider
	Normalize       NormalizeOptions
	LocationTimeout time.Duration
	HighAccuracy    bool
	Logger          *slog.Logger
	Renderers       []Renderer
}

// Engine tracks the latest bearing and heading and keeps the display state
// in step with both.
type Engine struct {
	locator      LocationProvider
	normalize    NormalizeOptions
	timeout      time.Duration
	highAccuracy bool
	logger       *slog.Logger
	group        singleflight.Group

	// deliver serializes state changes with their notification, so a slow
	// renderer can never be handed an older snapshot after a newer one.
	deliver sync.Mutex

	mu          sync.RWMutex
	observer    *GeoCoordinate
	bearing     *BearingResult
	heading     *HeadingSample
	display     DisplayState
	orienting   bool
	locationErr error
	orientErr   error
	updatedAt   time.Time
	renderers   []Renderer
}

// NewEngine creates an engine with no bearing and no heading.
func NewEngine(opts Options) *Engine {
	timeout := opts.LocationTimeout
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		locator:      opts.Locator,
		normalize:    opts.Normalize,
		timeout:      timeout,
		highAccuracy: opts.HighAccuracy,
		logger:       logger.With(slog.String("component", "qibla_engine")),
		renderers:    append([]Renderer(nil), opts.Renderers...),
		updatedAt:    time.Now(),
	}
}

// AddRenderer registers r for future state changes.
func (e *Engine) AddRenderer(r Renderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderers = append(e.renderers, r)
}

// Locate requests a location fix and replaces the bearing on success.
// Calls made while a request is pending share its outcome instead of
// starting another one. On failure the previous bearing is kept.
//
// The request itself is bounded only by the location timeout. Cancelling
// ctx returns early for this caller and leaves the request running for the
// others.
func (e *Engine) Locate(ctx context.Context) (BearingResult, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan("locate", func() (any, error) {
		return e.locate(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			e.logger.Debug("location request coalesced")
		}
		if res.Err != nil {
			return BearingResult{}, res.Err
		}
		return res.Val.(BearingResult), nil
	case <-ctx.Done():
		return BearingResult{}, ctx.Err()
	}
}

func (e *Engine) locate(ctx context.Context) (BearingResult, error) {
	// A retry starts from a clean slate, as far as errors go.
	e.update(func() bool {
		cleared := e.locationErr != nil
		e.locationErr = nil
		return cleared
	})

	if e.locator == nil {
		err := &Error{Kind: LocationUnavailable, Err: errors.New("no location provider configured")}
		e.recordLocationError(err)
		return BearingResult{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	coord, err := e.locator.RequestLocation(reqCtx, LocationOptions{
		HighAccuracy: e.highAccuracy,
		Timeout:      e.timeout,
	})
	if err == nil {
		if verr := coord.Validate(); verr != nil {
			err = &Error{Kind: LocationUnavailable, Err: fmt.Errorf("provider returned invalid fix: %w", verr)}
		}
	}
	if errors.Is(err, context.Canceled) {
		// Nobody is waiting for this fix; it is not a location failure.
		return BearingResult{}, err
	}
	if err != nil {
		cerr := ClassifyLocationError(err)
		e.recordLocationError(cerr)
		e.logger.Warn("location request failed",
			slog.String("kind", KindOf(cerr).String()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return BearingResult{}, cerr
	}

	e.logger.Info("location fix acquired",
		slog.Float64("lat", coord.Latitude),
		slog.Float64("lon", coord.Longitude),
		slog.Duration("duration", time.Since(start)))

	return e.SetObserver(coord)
}

// SetObserver computes the bearing for a known coordinate and makes it
// current, as if a location request had produced it.
func (e *Engine) SetObserver(coord GeoCoordinate) (BearingResult, error) {
	if err := coord.Validate(); err != nil {
		return BearingResult{}, err
	}
	result := ComputeBearing(coord)

	e.update(func() bool {
		e.observer = &coord
		e.bearing = &result
		e.locationErr = nil
		if e.heading != nil {
			e.display = UpdateDisplay(e.display, e.bearing, *e.heading)
		}
		return true
	})
	return result, nil
}

// HandleEvent normalises an orientation event and updates the display.
// Events without a usable angle are returned but change nothing.
func (e *Engine) HandleEvent(event Event) HeadingSample {
	sample, _ := e.ApplyEvent(event)
	return sample
}

// ApplyEvent is HandleEvent that also returns the state the event produced.
// For events without a usable angle that is the current state.
func (e *Engine) ApplyEvent(event Event) (HeadingSample, Snapshot) {
	sample := NormalizeHeading(event, e.normalize)
	if sample.Value == nil {
		return sample, e.Snapshot()
	}

	snap := e.update(func() bool {
		e.heading = &sample
		e.display = UpdateDisplay(e.display, e.bearing, sample)
		return true
	})
	return sample, snap
}

// StartOrientation asks for permission, then subscribes to source. The
// returned stop function ends the subscription and is safe to call more
// than once. Failures here never touch the bearing.
func (e *Engine) StartOrientation(ctx context.Context, source OrientationSource, permission PermissionRequester) (func(), error) {
	if source == nil {
		return nil, e.recordOrientationError(ErrOrientationUnsupported)
	}

	if permission != nil {
		granted, err := permission.RequestOrientationPermission(ctx)
		if err != nil {
			if KindOf(err) == OrientationUnsupported {
				return nil, e.recordOrientationError(err)
			}
			return nil, e.recordOrientationError(&Error{Kind: OrientationPermissionDenied, Err: err})
		}
		if granted != PermissionGranted {
			return nil, e.recordOrientationError(ErrOrientationPermissionDenied)
		}
	}

	stop, err := source.Subscribe(func(ev Event) { e.HandleEvent(ev) })
	if err != nil {
		return nil, e.recordOrientationError(&Error{Kind: OrientationUnsupported, Err: err})
	}

	e.update(func() bool {
		e.orienting = true
		e.orientErr = nil
		return true
	})

	e.logger.Info("orientation listening started")

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()

			e.update(func() bool {
				e.orienting = false
				return true
			})

			e.logger.Info("orientation listening stopped")
		})
	}, nil
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buildSnapshot()
}

// Bearing returns the current bearing, if any.
func (e *Engine) Bearing() (BearingResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.bearing == nil {
		return BearingResult{}, false
	}
	return *e.bearing, true
}

func (e *Engine) recordLocationError(err error) {
	e.update(func() bool {
		e.locationErr = err
		return true
	})
}

func (e *Engine) recordOrientationError(err error) error {
	e.update(func() bool {
		e.orientErr = err
		return true
	})

	e.logger.Warn("orientation unavailable",
		slog.String("kind", KindOf(err).String()),
		slog.String("error", err.Error()))
	return err
}

// update runs change under the state lock. When change reports that the
// state changed, it is stamped and the new snapshot goes to every renderer
// before the next update may start. Readers are never blocked by renderers.
func (e *Engine) update(change func() bool) Snapshot {
	e.deliver.Lock()
	defer e.deliver.Unlock()

	e.mu.Lock()
	if !change() {
		snap := e.buildSnapshot()
		e.mu.Unlock()
		return snap
	}
	e.updatedAt = time.Now()
	renderers := make([]Renderer, len(e.renderers))
	copy(renderers, e.renderers)
	snap := e.buildSnapshot()
	e.mu.Unlock()

	notify(renderers, snap)
	return snap
}

func (e *Engine) buildSnapshot() Snapshot {
	snap := Snapshot{
		Display:          copyDisplay(e.display),
		Orienting:        e.orienting,
		LocationError:    NewErrorReport(e.locationErr),
		OrientationError: NewErrorReport(e.orientErr),
		UpdatedAt:        e.updatedAt,
	}
	if e.observer != nil {
		o := *e.observer
		snap.Observer = &o
	}
	if e.bearing != nil {
		b := *e.bearing
		snap.Bearing = &b
	}
	if e.heading != nil {
		h := copyHeading(*e.heading)
		snap.Heading = &h
	}
	return snap
}

func copyDisplay(d DisplayState) DisplayState {
	if d.ArrowRotation != nil {
		a := *d.ArrowRotation
		d.ArrowRotation = &a
	}
	return d
}

func copyHeading(h HeadingSample) HeadingSample {
	if h.Value != nil {
		v := *h.Value
		h.Value = &v
	}
	return h
}

func notify(renderers []Renderer, snap Snapshot) {
	for _, r := range renderers {
		r.Render(snap)
	}
}

package orientation

import (
	"encoding/json"
	"fmt"
	"math"

	"mihrab.noorapp.org/internal/qibla"
)

// RawEvent is a device orientation reading as a browser or sensor bridge
// reports it. Absent angles are null.
type RawEvent struct {
	WebkitCompassHeading *float64 `json:"webkitCompassHeading,omitempty"`
	Alpha                *float64 `json:"alpha,omitempty"`
	Absolute             bool     `json:"absolute"`
	ScreenOrientation    int      `json:"screenOrientation"`
}

// Resolve picks the platform shape of the reading. A compass heading wins
// over alpha; a reading with neither carries no data.
func (r RawEvent) Resolve() qibla.Event {
	screen := qibla.ScreenOrientation(r.ScreenOrientation)

	switch {
	case usable(r.WebkitCompassHeading):
		return qibla.CompassHeadingEvent{Heading: *r.WebkitCompassHeading}
	case usable(r.Alpha) && r.Absolute:
		return qibla.AbsoluteAlphaEvent{Alpha: *r.Alpha, Screen: screen}
	case usable(r.Alpha):
		return qibla.RelativeAlphaEvent{Alpha: *r.Alpha, Screen: screen}
	default:
		return qibla.NoDataEvent{}
	}
}

// DecodeEvent parses a JSON RawEvent and resolves it.
func DecodeEvent(data []byte) (qibla.Event, error) {
	var raw RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode orientation event: %w", err)
	}
	return raw.Resolve(), nil
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

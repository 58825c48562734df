package qibla

import "math"

// SourceModel names the platform convention a heading sample came from.
type SourceModel string

const (
	SourceIOSCompass      SourceModel = "ios-compass"
	SourceAndroidAbsolute SourceModel = "android-absolute"
	SourceFallbackAlpha   SourceModel = "fallback-alpha"
)

// ScreenOrientation is the physical rotation of the screen away from
// canonical portrait, in degrees.
type ScreenOrientation int

const (
	ScreenPortrait       ScreenOrientation = 0
	ScreenLandscapeLeft  ScreenOrientation = 90
	ScreenLandscapeRight ScreenOrientation = -90
	ScreenUpsideDown     ScreenOrientation = 180
)

// correction returns the offset to add to an alpha-derived heading so that it
// follows the screen rather than the sensor frame.
func (s ScreenOrientation) correction() float64 {
	switch s {
	case ScreenLandscapeLeft:
		return 270
	case ScreenLandscapeRight, 270:
		return 90
	case ScreenUpsideDown, -180:
		return 180
	default:
		return 0
	}
}

// Event is a raw orientation reading already resolved into one of the
// platform shapes below.
type Event interface {
	isOrientationEvent()
}

// CompassHeadingEvent carries a heading already referenced clockwise from
// true north (webkitCompassHeading).
type CompassHeadingEvent struct {
	Heading float64
}

// AbsoluteAlphaEvent carries an alpha angle that the platform guarantees to
// be north-referenced.
type AbsoluteAlphaEvent struct {
	Alpha  float64
	Screen ScreenOrientation
}

// RelativeAlphaEvent carries an alpha angle relative to wherever the device
// was pointing when the sensor started.
type RelativeAlphaEvent struct {
	Alpha  float64
	Screen ScreenOrientation
}

// NoDataEvent is an orientation event without any usable angle.
type NoDataEvent struct{}

func (CompassHeadingEvent) isOrientationEvent() {}
func (AbsoluteAlphaEvent) isOrientationEvent()  {}
func (RelativeAlphaEvent) isOrientationEvent()  {}
func (NoDataEvent) isOrientationEvent()         {}

// HeadingSample is a heading normalised to degrees clockwise from north.
// A nil Value means the sample carried no usable angle.
type HeadingSample struct {
	Value       *float64    `json:"value"`
	SourceModel SourceModel `json:"sourceModel,omitempty"`
	IsAbsolute  bool        `json:"isAbsolute"`
}

// Heading returns the sample value and whether one is present.
func (h HeadingSample) Heading() (float64, bool) {
	if h.Value == nil {
		return 0, false
	}
	return *h.Value, true
}

// NormalizeOptions controls the screen-orientation correction applied to
// alpha-based samples. Platforms disagree on whether absolute events are
// already compensated, so each branch is switched independently.
type NormalizeOptions struct {
	CorrectRelative bool `json:"correctRelative"`
	CorrectAbsolute bool `json:"correctAbsolute"`
}

// DefaultNormalizeOptions corrects relative alpha samples only.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{CorrectRelative: true}
}

// NormalizeHeading converts a platform event into a HeadingSample.
func NormalizeHeading(event Event, opts NormalizeOptions) HeadingSample {
	switch ev := event.(type) {
	case CompassHeadingEvent:
		if !finite(ev.Heading) {
			return HeadingSample{}
		}
		return newSample(Normalize360(ev.Heading), SourceIOSCompass, true)

	case AbsoluteAlphaEvent:
		if !finite(ev.Alpha) {
			return HeadingSample{}
		}
		heading := flipAlpha(ev.Alpha)
		if opts.CorrectAbsolute {
			heading = Normalize360(heading + ev.Screen.correction())
		}
		return newSample(heading, SourceAndroidAbsolute, true)

	case RelativeAlphaEvent:
		if !finite(ev.Alpha) {
			return HeadingSample{}
		}
		heading := flipAlpha(ev.Alpha)
		if opts.CorrectRelative {
			heading = Normalize360(heading + ev.Screen.correction())
		}
		return newSample(heading, SourceFallbackAlpha, false)

	default:
		return HeadingSample{}
	}
}

// flipAlpha turns a counter-clockwise alpha into a clockwise heading.
func flipAlpha(alpha float64) float64 {
	return Normalize360(360 - Normalize360(alpha))
}

func newSample(value float64, model SourceModel, absolute bool) HeadingSample {
	return HeadingSample{Value: &value, SourceModel: model, IsAbsolute: absolute}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

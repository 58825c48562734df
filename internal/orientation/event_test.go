package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mihrab.noorapp.org/internal/qibla"
)

func ptr(f float64) *float64 { return &f }

func TestRawEventResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  RawEvent
		want qibla.Event
	}{
		{
			name: "compass heading wins over alpha",
			raw:  RawEvent{WebkitCompassHeading: ptr(45), Alpha: ptr(10), Absolute: true},
			want: qibla.CompassHeadingEvent{Heading: 45},
		},
		{
			name: "absolute alpha",
			raw:  RawEvent{Alpha: ptr(90), Absolute: true, ScreenOrientation: 90},
			want: qibla.AbsoluteAlphaEvent{Alpha: 90, Screen: qibla.ScreenLandscapeLeft},
		},
		{
			name: "relative alpha",
			raw:  RawEvent{Alpha: ptr(30), ScreenOrientation: -90},
			want: qibla.RelativeAlphaEvent{Alpha: 30, Screen: qibla.ScreenLandscapeRight},
		},
		{
			name: "NaN compass falls back to alpha",
			raw:  RawEvent{WebkitCompassHeading: ptr(math.NaN()), Alpha: ptr(30)},
			want: qibla.RelativeAlphaEvent{Alpha: 30},
		},
		{
			name: "nothing usable",
			raw:  RawEvent{Absolute: true},
			want: qibla.NoDataEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.raw.Resolve())
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Run("iOS payload", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"webkitCompassHeading": 136.5, "alpha": 12}`))
		require.NoError(t, err)
		assert.Equal(t, qibla.CompassHeadingEvent{Heading: 136.5}, ev)
	})

	t.Run("null alpha", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"alpha": null, "absolute": false}`))
		require.NoError(t, err)
		assert.Equal(t, qibla.NoDataEvent{}, ev)
	})

	t.Run("decoded event normalises like the engine expects", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"alpha": 90, "absolute": true}`))
		require.NoError(t, err)

		sample := qibla.NormalizeHeading(ev, qibla.DefaultNormalizeOptions())
		value, ok := sample.Heading()
		require.True(t, ok)
		assert.InDelta(t, 270.0, value, 1e-9)
		assert.Equal(t, qibla.SourceAndroidAbsolute, sample.SourceModel)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeEvent([]byte(`{"alpha": "north"}`))
		assert.ErrorContains(t, err, "decode orientation event")
	})
}

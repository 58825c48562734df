package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	const kaabaLat, kaabaLon = 21.422487, 39.826206

	tests := []struct {
		name     string
		lat, lon float64
		expected float64
	}{
		{name: "Cairo", lat: 30.033, lon: 31.233, expected: 1286.5},
		{name: "London", lat: 51.509, lon: -0.118, expected: 4793.3},
		{name: "New York", lat: 40.713, lon: -74.006, expected: 10306.3},
		{name: "Jakarta", lat: -6.2088, lon: 106.8456, expected: 7920.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Haversine(tt.lat, tt.lon, kaabaLat, kaabaLon), 1.0)
		})
	}

	t.Run("same point", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(kaabaLat, kaabaLon, kaabaLat, kaabaLon))
	})

	t.Run("antipodal points", func(t *testing.T) {
		assert.InDelta(t, 20015.1, Haversine(0, 0, 0, 180), 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Haversine(10, 20, 30, 40), Haversine(30, 40, 10, 20), 1e-9)
	})
}

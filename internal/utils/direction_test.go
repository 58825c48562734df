package utils

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearingToCompass(t *testing.T) {
	tests := []struct {
		bearing  float64
		expected string
	}{
		{0, "N"},
		{22.4, "N"},
		{22.5, "NE"},
		{45, "NE"},
		{90, "E"},
		{136.09, "SE"},
		{180, "S"},
		{225, "SW"},
		{243.8, "SW"},
		{270, "W"},
		{295.15, "NW"},
		{337.5, "N"},
		{359.9, "N"},
		{360, "N"},
		{-45, "NW"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g", tt.bearing), func(t *testing.T) {
			assert.Equal(t, tt.expected, BearingToCompass(tt.bearing))
		})
	}

	assert.Empty(t, BearingToCompass(math.NaN()))
}

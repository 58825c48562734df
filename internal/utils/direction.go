package utils

import "math"

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// BearingToCompass converts a bearing in degrees to an 8-point compass direction.
func BearingToCompass(bearing float64) string {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return ""
	}
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	index := int((b+22.5)/45.0) % 8
	return compassPoints[index]
}

package qibla

import (
	"errors"
	"math"
)

// coincidenceEpsilon is how close (in degrees) an observer must be to the
// destination before the bearing is reported as 0.
const coincidenceEpsilon = 1e-9

// GeoCoordinate is a point on the earth's surface in decimal degrees.
type GeoCoordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate reports whether the coordinate is finite and within range.
func (c GeoCoordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) {
		return errors.New("latitude must be a finite number")
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return errors.New("longitude must be a finite number")
	}
	if c.Latitude < -90.0 || c.Latitude > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	if c.Longitude < -180.0 || c.Longitude > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

var kaaba = GeoCoordinate{Latitude: 21.422487, Longitude: 39.826206}

// Kaaba returns the fixed destination every bearing is computed toward.
func Kaaba() GeoCoordinate {
	return kaaba
}

// BearingResult is the initial great-circle bearing from an observer to the
// Kaaba, clockwise from true north, in [0, 360).
type BearingResult struct {
	QiblaDirection float64 `json:"qiblaDirection"`
}

// ComputeBearing returns the qibla direction for the given observer.
//
// The formula uses tan(φ_destination) rather than the usual
// sin/cos form; both yield the same initial bearing:
//
//	Δλ = λ_destination − λ_observer
//	y  = sin(Δλ)
//	x  = cos(φ_observer)·tan(φ_destination) − sin(φ_observer)·cos(Δλ)
//	θ  = atan2(y, x)
//
// An observer standing on the destination gets 0.
func ComputeBearing(observer GeoCoordinate) BearingResult {
	if coincides(observer, kaaba) {
		return BearingResult{QiblaDirection: 0}
	}

	phiObserver := toRadians(observer.Latitude)
	phiDestination := toRadians(kaaba.Latitude)
	deltaLambda := toRadians(kaaba.Longitude - observer.Longitude)

	y := math.Sin(deltaLambda)
	x := math.Cos(phiObserver)*math.Tan(phiDestination) - math.Sin(phiObserver)*math.Cos(deltaLambda)

	bearing := toDegrees(math.Atan2(y, x))

	return BearingResult{QiblaDirection: Normalize360(bearing + 360)}
}

// Normalize360 wraps any angle into [0, 360). 360 becomes 0 and negative
// angles wrap around.
func Normalize360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// A tiny negative remainder plus 360 rounds up to 360; -0 is folded to 0.
	if d >= 360 || d == 0 {
		return 0
	}
	return d
}

func coincides(a, b GeoCoordinate) bool {
	return math.Abs(a.Latitude-b.Latitude) < coincidenceEpsilon &&
		math.Abs(a.Longitude-b.Longitude) < coincidenceEpsilon
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

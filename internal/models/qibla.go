package models

import (
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

// Observer is where a bearing was computed from. Name and Country are set
// when the position came from the places database.
type Observer struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	Country string  `json:"country,omitempty"`
}

// BearingEntry is the response body for a qibla bearing request.
type BearingEntry struct {
	QiblaDirection float64  `json:"qiblaDirection"`
	CompassPoint   string   `json:"compassPoint"`
	DistanceKm     float64  `json:"distanceKm"`
	Observer       Observer `json:"observer"`
}

// NewBearingEntry computes the bearing and distance from observer to the Kaaba.
func NewBearingEntry(observer Observer) BearingEntry {
	coord := qibla.GeoCoordinate{Latitude: observer.Lat, Longitude: observer.Lon}
	result := qibla.ComputeBearing(coord)
	kaaba := qibla.Kaaba()

	return BearingEntry{
		QiblaDirection: result.QiblaDirection,
		CompassPoint:   utils.BearingToCompass(result.QiblaDirection),
		DistanceKm:     utils.Haversine(observer.Lat, observer.Lon, kaaba.Latitude, kaaba.Longitude),
		Observer:       observer,
	}
}

// Place is a gazetteer entry as returned by place searches.
type Place struct {
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	QiblaDirection float64 `json:"qiblaDirection"`
}

// DisplayEntry is the result of normalising one orientation reading against
// an optional bearing.
type DisplayEntry struct {
	Heading        qibla.HeadingSample `json:"heading"`
	Display        qibla.DisplayState  `json:"display"`
	QiblaDirection *float64            `json:"qiblaDirection,omitempty"`
}

// LocateEntry reports the outcome of a location request. Bearing is the
// bearing in effect afterwards, which on failure is the previous one.
type LocateEntry struct {
	Bearing *qibla.BearingResult `json:"bearing,omitempty"`
	Error   *qibla.ErrorReport   `json:"error,omitempty"`
}

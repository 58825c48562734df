package geolocation

import (
	"context"
	"errors"
	"fmt"

	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/placesdb"
)

// PlaceFinder resolves a place name to a gazetteer entry.
type PlaceFinder interface {
	FindPlace(ctx context.Context, name string) (placesdb.Place, error)
}

// Place reports the position of a named place.
type Place struct {
	finder PlaceFinder
	name   string
}

func NewPlace(finder PlaceFinder, name string) *Place {
	return &Place{finder: finder, name: name}
}

func (p *Place) RequestLocation(ctx context.Context, _ qibla.LocationOptions) (qibla.GeoCoordinate, error) {
	place, err := p.finder.FindPlace(ctx, p.name)
	if errors.Is(err, placesdb.ErrPlaceNotFound) {
		return qibla.GeoCoordinate{}, &qibla.Error{
			Kind: qibla.LocationUnavailable,
			Err:  fmt.Errorf("place %q is not in the places database", p.name),
		}
	}
	if err != nil {
		return qibla.GeoCoordinate{}, err
	}
	return qibla.GeoCoordinate{Latitude: place.Lat, Longitude: place.Lon}, nil
}

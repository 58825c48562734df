package geolocation

import (
	"context"
	"fmt"

	"mihrab.noorapp.org/internal/qibla"
)

// Static always reports the same position, typically one set in configuration.
type Static struct {
	coord qibla.GeoCoordinate
}

// NewStatic validates coord and returns a provider for it.
func NewStatic(coord qibla.GeoCoordinate) (*Static, error) {
	if err := coord.Validate(); err != nil {
		return nil, fmt.Errorf("static location: %w", err)
	}
	return &Static{coord: coord}, nil
}

func (s *Static) RequestLocation(ctx context.Context, _ qibla.LocationOptions) (qibla.GeoCoordinate, error) {
	if err := ctx.Err(); err != nil {
		return qibla.GeoCoordinate{}, err
	}
	return s.coord, nil
}

package restapi

import (
	"net/http"

	"mihrab.noorapp.org/internal/models"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

const defaultPlacesLimit = 10

func (api *RestAPI) placesHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	fieldErrors := utils.FieldErrors{}
	limit := utils.ParseIntParam(queryParams, "limit", defaultPlacesLimit, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if err := utils.ValidateLimit(limit); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"limit": {err.Error()}})
		return
	}

	query := queryParams.Get("query")
	if query == "" {
		api.validationErrorResponse(w, r, map[string][]string{"query": {`Missing required field "query".`}})
		return
	}
	query, err := utils.ValidateAndSanitizeQuery(query)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"query": {err.Error()}})
		return
	}

	ctx := r.Context()
	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	results := []models.Place{}
	if api.Places == nil {
		api.sendResponse(w, r, models.NewListResponse(results, false))
		return
	}

	// One extra row tells us whether the limit cut the list short.
	places, err := api.Places.SearchPlaces(ctx, query, limit+1)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	limitExceeded := len(places) > limit
	if limitExceeded {
		places = places[:limit]
	}
	for _, place := range places {
		bearing := qibla.ComputeBearing(qibla.GeoCoordinate{Latitude: place.Lat, Longitude: place.Lon})
		results = append(results, models.Place{
			Name:           place.Name,
			Country:        place.Country,
			Lat:            place.Lat,
			Lon:            place.Lon,
			QiblaDirection: bearing.QiblaDirection,
		})
	}

	api.sendResponse(w, r, models.NewListResponse(results, limitExceeded))
}

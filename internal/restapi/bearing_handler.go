package restapi

import (
	"errors"
	"net/http"

	"mihrab.noorapp.org/internal/models"
	"mihrab.noorapp.org/internal/utils"
	"mihrab.noorapp.org/placesdb"
)

func (api *RestAPI) bearingHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	fieldErrors := utils.FieldErrors{}
	lat := utils.RequireFloatParam(queryParams, "lat", fieldErrors)
	lon := utils.RequireFloatParam(queryParams, "lon", fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if locationErrors := utils.ValidateCoordinateParams(lat, lon); len(locationErrors) > 0 {
		api.validationErrorResponse(w, r, locationErrors)
		return
	}

	entry := models.NewBearingEntry(models.Observer{Lat: lat, Lon: lon})
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) bearingForPlaceHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractIDFromParams(r, "place")
	if err := utils.ValidatePlaceName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"place": {err.Error()},
		})
		return
	}

	if api.Places == nil {
		api.sendNotFound(w, r)
		return
	}

	place, err := api.Places.FindPlace(r.Context(), name)
	if errors.Is(err, placesdb.ErrPlaceNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := models.NewBearingEntry(models.Observer{
		Lat:     place.Lat,
		Lon:     place.Lon,
		Name:    place.Name,
		Country: place.Country,
	})
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

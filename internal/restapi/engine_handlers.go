package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/models"
	"mihrab.noorapp.org/internal/orientation"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

const maxHeadingBodyBytes = 1 << 10

func (api *RestAPI) stateHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Engine.Snapshot()))
}

// locateHandler asks the configured location provider for a fix. A failed
// fix is reported in the entry; the bearing in effect is returned either way.
func (api *RestAPI) locateHandler(w http.ResponseWriter, r *http.Request) {
	bearing, err := api.Engine.Locate(r.Context())
	if err != nil && r.Context().Err() != nil {
		// The client went away; the fix still lands in the engine state.
		return
	}

	entry := models.LocateEntry{}
	if err != nil {
		logging.FromContext(r.Context()).Warn("location request failed",
			slog.String("kind", qibla.KindOf(err).String()),
			slog.String("error", err.Error()))

		entry.Error = qibla.NewErrorReport(err)
		if previous, ok := api.Engine.Bearing(); ok {
			entry.Bearing = &previous
		}
	} else {
		entry.Bearing = &bearing
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) observerHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	fieldErrors := utils.FieldErrors{}
	lat := utils.RequireFloatParam(queryParams, "lat", fieldErrors)
	lon := utils.RequireFloatParam(queryParams, "lon", fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if _, err := api.Engine.SetObserver(qibla.GeoCoordinate{Latitude: lat, Longitude: lon}); err != nil {
		api.validationErrorResponse(w, r, utils.ValidateCoordinateParams(lat, lon))
		return
	}

	entry := models.NewBearingEntry(models.Observer{Lat: lat, Lon: lon})
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// headingHandler feeds one orientation reading into the engine and returns
// the resulting heading and display state.
func (api *RestAPI) headingHandler(w http.ResponseWriter, r *http.Request) {
	var raw orientation.RawEvent
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHeadingBodyBytes))
	if err := decoder.Decode(&raw); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"body": {"Invalid orientation event."},
		})
		return
	}

	fieldErrors := utils.FieldErrors{}
	validateRawEvent(raw, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	sample, snap := api.Engine.ApplyEvent(raw.Resolve())

	entry := models.DisplayEntry{
		Heading: sample,
		Display: snap.Display,
	}
	if snap.Bearing != nil {
		entry.QiblaDirection = &snap.Bearing.QiblaDirection
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) streamHandler(w http.ResponseWriter, r *http.Request) {
	if api.Hub == nil {
		api.sendNotFound(w, r)
		return
	}
	api.Hub.ServeHTTP(w, r)
}

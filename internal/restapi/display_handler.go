package restapi

import (
	"net/http"

	"mihrab.noorapp.org/internal/models"
	"mihrab.noorapp.org/internal/orientation"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

// displayHandler normalises a single orientation reading and computes the
// display rotations for it. Nothing is stored.
func (api *RestAPI) displayHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	fieldErrors := utils.FieldErrors{}
	lat := utils.ParseOptionalFloatParam(queryParams, "lat", fieldErrors)
	lon := utils.ParseOptionalFloatParam(queryParams, "lon", fieldErrors)
	raw := orientation.RawEvent{
		WebkitCompassHeading: utils.ParseOptionalFloatParam(queryParams, "webkitCompassHeading", fieldErrors),
		Alpha:                utils.ParseOptionalFloatParam(queryParams, "alpha", fieldErrors),
		Absolute:             utils.ParseBoolParam(queryParams, "absolute", false, fieldErrors),
		ScreenOrientation:    utils.ParseIntParam(queryParams, "screenOrientation", 0, fieldErrors),
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if (lat == nil) != (lon == nil) {
		fieldErrors.Add("lat", "lat and lon must be given together")
	}
	if lat != nil && lon != nil {
		fieldErrors.Merge(utils.ValidateCoordinateParams(*lat, *lon))
	}
	validateRawEvent(raw, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	var bearing *qibla.BearingResult
	if lat != nil && lon != nil {
		result := qibla.ComputeBearing(qibla.GeoCoordinate{Latitude: *lat, Longitude: *lon})
		bearing = &result
	}

	sample := qibla.NormalizeHeading(raw.Resolve(), api.normalizeOptions())
	entry := models.DisplayEntry{
		Heading: sample,
		Display: qibla.UpdateDisplay(qibla.DisplayState{}, bearing, sample),
	}
	if bearing != nil {
		entry.QiblaDirection = &bearing.QiblaDirection
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) normalizeOptions() qibla.NormalizeOptions {
	return qibla.NormalizeOptions{
		CorrectRelative: api.Config.CorrectRelative,
		CorrectAbsolute: api.Config.CorrectAbsolute,
	}
}

func validateRawEvent(raw orientation.RawEvent, fieldErrors utils.FieldErrors) {
	if raw.WebkitCompassHeading != nil {
		if err := utils.ValidateAngle(*raw.WebkitCompassHeading); err != nil {
			fieldErrors.Add("webkitCompassHeading", err.Error())
		}
	}
	if raw.Alpha != nil {
		if err := utils.ValidateAngle(*raw.Alpha); err != nil {
			fieldErrors.Add("alpha", err.Error())
		}
	}
	if err := utils.ValidateScreenOrientation(raw.ScreenOrientation); err != nil {
		fieldErrors.Add("screenOrientation", err.Error())
	}
}

package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

const streamPath = "/api/qibla/stream"

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/qibla/bearing.json", validateAPIKey(api, api.bearingHandler))
	router.Handler(http.MethodGet, "/api/qibla/bearing/:place", validateAPIKey(api, api.bearingForPlaceHandler))
	router.Handler(http.MethodGet, "/api/qibla/places.json", validateAPIKey(api, api.placesHandler))
	router.Handler(http.MethodGet, "/api/qibla/display.json", validateAPIKey(api, api.displayHandler))
	router.Handler(http.MethodGet, "/api/qibla/state.json", validateAPIKey(api, api.stateHandler))
	router.Handler(http.MethodPost, "/api/qibla/locate.json", validateAPIKey(api, api.locateHandler))
	router.Handler(http.MethodPost, "/api/qibla/observer.json", validateAPIKey(api, api.observerHandler))
	router.Handler(http.MethodPost, "/api/qibla/heading.json", validateAPIKey(api, api.headingHandler))
	router.Handler(http.MethodGet, streamPath, validateAPIKey(api, api.streamHandler))
	router.Handler(http.MethodGet, "/api/where/current-time.json", validateAPIKey(api, api.currentTimeHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Routes returns the full handler chain: request logging, security headers,
// rate limiting and compression around the router.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	compression := DefaultCompressionConfig()
	compression.SkipPaths = []string{streamPath}

	var handler http.Handler = NewCompressionMiddleware(compression)(router)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.logger(nil))(handler)
}

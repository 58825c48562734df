package restapi

import (
	"net/http"
)

// baseSecurityHeaders are set on every response, including WebSocket upgrades.
var baseSecurityHeaders = [...][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	// API responses are JSON only; nothing is ever embedded or scripted.
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';"},
}

// corsHeaders are added only for cross-origin requests. Browsers post
// heading events from any page that embeds the compass.
var corsHeaders = [...][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type, Authorization"},
	{"Access-Control-Max-Age", "86400"},
}

// WithSecurityHeaders wraps the given handler with security headers middleware
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(handler)
}

// securityHeaders answers CORS preflight requests itself and passes
// everything else on.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range baseSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		if r.Header.Get("Origin") != "" {
			for _, kv := range corsHeaders {
				h.Set(kv[0], kv[1])
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

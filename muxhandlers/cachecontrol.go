package muxhandlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// CacheControlRule maps a Content-Type prefix to a Cache-Control value.
type CacheControlRule struct {
	// ContentType is matched case-insensitively as a prefix of the response
	// Content-Type (e.g. "text/html", "application/").
	ContentType string
	Value       string
}

// DocumentCacheRules revalidates encoded documents on every request and
// lets browsers keep the docs page briefly.
var DocumentCacheRules = []CacheControlRule{
	{ContentType: "application/json", Value: "no-cache"},
	{ContentType: "application/x-yaml", Value: "no-cache"},
	{ContentType: "text/html", Value: "public, max-age=300"},
}

// CacheControlMiddleware returns a middleware that sets Cache-Control from
// the first rule matching the response Content-Type. Responses that match no
// rule, or already carry the header, are left alone.
func CacheControlMiddleware(rules ...CacheControlRule) mux.MiddlewareFunc {
	normalized := make([]CacheControlRule, len(rules))
	for i, r := range rules {
		normalized[i] = CacheControlRule{ContentType: strings.ToLower(r.ContentType), Value: r.Value}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cacheControlResponseWriter{ResponseWriter: w, rules: normalized}, r)
		})
	}
}

// cacheControlResponseWriter sets the header right before it is flushed,
// once the handler has chosen a Content-Type.
type cacheControlResponseWriter struct {
	http.ResponseWriter
	rules       []CacheControlRule
	wroteHeader bool
}

func (cw *cacheControlResponseWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	if h.Get("Cache-Control") == "" {
		ct := strings.ToLower(h.Get("Content-Type"))
		for _, rule := range cw.rules {
			if strings.HasPrefix(ct, rule.ContentType) {
				h.Set("Cache-Control", rule.Value)
				break
			}
		}
	}

	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *cacheControlResponseWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (cw *cacheControlResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// ErrNoOrigins is returned when CORSConfig.AllowedOrigins is empty.
var ErrNoOrigins = errors.New("cors: at least one allowed origin is required")

const documentMethods = "GET,HEAD,OPTIONS"

// CORSConfig configures CORSMiddleware.
//
// Spec references:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
type CORSConfig struct {
	// AllowedOrigins lists exact origins, "*", or subdomain wildcard
	// patterns like "https://*.example.com".
	AllowedOrigins []string

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header.
	MaxAge int
}

type wildcardPattern struct {
	prefix string
	suffix string
}

// parseOrigins lowercases the configured origins and splits them into exact
// matches and single-wildcard patterns.
func parseOrigins(origins []string) (exact []string, patterns []wildcardPattern, anyOrigin bool, err error) {
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "":
			continue
		case o == "*":
			anyOrigin = true
		case strings.Contains(o, "*"):
			prefix, suffix, _ := strings.Cut(o, "*")
			if strings.Contains(suffix, "*") {
				return nil, nil, false, errors.New("cors: origin pattern contains multiple wildcards: " + o)
			}
			patterns = append(patterns, wildcardPattern{prefix: prefix, suffix: suffix})
		default:
			exact = append(exact, o)
		}
	}
	return exact, patterns, anyOrigin, nil
}

func matchOrigin(origin string, exact []string, patterns []wildcardPattern) bool {
	for _, o := range exact {
		if o == origin {
			return true
		}
	}
	for _, wp := range patterns {
		if len(origin) >= len(wp.prefix)+len(wp.suffix) &&
			strings.HasPrefix(origin, wp.prefix) &&
			strings.HasSuffix(origin, wp.suffix) {
			return true
		}
	}
	return false
}

// CORSMiddleware returns a middleware that lets browsers on allowed origins
// fetch the served documents. Preflight requests from allowed origins are
// answered with 204 and never reach the wrapped handler.
func CORSMiddleware(cfg CORSConfig) (mux.MiddlewareFunc, error) {
	exact, patterns, anyOrigin, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}
	if !anyOrigin && len(exact) == 0 && len(patterns) == 0 {
		return nil, ErrNoOrigins
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !anyOrigin {
				w.Header().Add("Vary", "Origin")
			}
			if origin == "" || (!anyOrigin && !matchOrigin(strings.ToLower(origin), exact, patterns)) {
				next.ServeHTTP(w, r)
				return
			}

			if anyOrigin {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", documentMethods)

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			if cfg.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			w.Header().Add("Vary", "Access-Control-Request-Method")
			w.Header().Add("Vary", "Access-Control-Request-Headers")
			w.WriteHeader(http.StatusNoContent)
		})
	}, nil
}

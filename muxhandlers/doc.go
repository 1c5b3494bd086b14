// Package muxhandlers provides the middleware wrapped around served
// documentation endpoints.
//
// # CORS Middleware
//
// Documentation endpoints are read-only, so CORSMiddleware always advertises
// GET, HEAD and OPTIONS. Origins are exact strings, "*" or subdomain
// wildcards such as "https://*.example.com". It wraps the whole router so
// preflight requests are answered before route matching rejects OPTIONS:
//
//	cors, err := muxhandlers.CORSMiddleware(muxhandlers.CORSConfig{
//	    AllowedOrigins: []string{"https://*.example.com"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handler := cors(router)
//
// # Cache Control Middleware
//
// CacheControlMiddleware sets Cache-Control by response content type. The
// first matching rule wins and headers set by the handler are kept.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns panics into 500 responses and logs them.
package muxhandlers

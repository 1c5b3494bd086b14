package swagger

import (
	"encoding/json"
	"fmt"
	"html"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// DocsUI picks the HTML page served at the docs root.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// HandleConfig controls the routes registered by Handle. Filenames are
// joined under the base path unless they start with "/". A filename of "-"
// disables that route.
type HandleConfig struct {
	UI DocsUI

	// Title of the docs page; the document title when empty.
	Title string

	// JSONFilename defaults to "swagger.json".
	JSONFilename string
	// YAMLFilename defaults to "swagger.yaml".
	YAMLFilename string
	// OpenAPI3Filename serves the OpenAPI 3 conversion as JSON when set.
	OpenAPI3Filename string

	DisableDocs bool

	// SwaggerUIConfig holds extra SwaggerUIBundle options, written after
	// url and dom_id in key order.
	SwaggerUIConfig map[string]any
}

type docEndpoint struct {
	filename    string
	contentType string
	label       string
	encode      func() ([]byte, error)
	// source marks encodings the docs page may load.
	source bool
}

// Handle registers the compiled document on r under basePath: the JSON and
// YAML encodings, the optional OpenAPI 3 conversion and the docs page,
// which loads the JSON encoding, or the YAML one when JSON is disabled.
// A nil cfg uses the defaults. Every response body is built on first use
// and reused afterwards.
func Handle(r *mux.Router, basePath string, doc *Document, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	base := strings.TrimRight(basePath, "/")

	endpoints := []docEndpoint{
		{filename: orDefault(cfg.JSONFilename, "swagger.json"), contentType: "application/json", label: "JSON", encode: doc.JSON, source: true},
		{filename: orDefault(cfg.YAMLFilename, "swagger.yaml"), contentType: "application/x-yaml", label: "YAML", encode: doc.YAML, source: true},
	}
	if cfg.OpenAPI3Filename != "" {
		endpoints = append(endpoints, docEndpoint{
			filename:    cfg.OpenAPI3Filename,
			contentType: "application/json",
			label:       "OpenAPI 3",
			encode:      doc.openAPI3JSON,
		})
	}

	var specURL string
	for _, ep := range endpoints {
		if ep.filename == "-" {
			continue
		}
		route := routeFor(base, ep.filename)
		if ep.source && specURL == "" {
			specURL = route
		}
		r.Handle(route, cachedBody(ep.contentType, ep.label, ep.encode)).Methods(http.MethodGet, http.MethodHead)
	}

	if cfg.DisableDocs || specURL == "" {
		return
	}

	title := cfg.Title
	if title == "" {
		title = doc.Info.Title
	}
	page := cachedBody("text/html; charset=utf-8", "HTML", func() ([]byte, error) {
		return []byte(docsPage(cfg, title, specURL)), nil
	})

	routes := []string{base, base + "/"}
	if base == "" {
		routes = []string{"/"}
	}
	for _, route := range routes {
		r.Handle(route, page).Methods(http.MethodGet, http.MethodHead)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func routeFor(base, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return base + "/" + filename
}

// cachedBody serves the output of encode. A failed or panicking encode
// answers 500 on every request.
func cachedBody(contentType, label string, encode func() ([]byte, error)) http.Handler {
	var (
		once sync.Once
		body []byte
		err  error
	)
	build := func() {
		defer func() {
			if rv := recover(); rv != nil {
				err = fmt.Errorf("%v", rv)
			}
		}()
		body, err = encode()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		once.Do(build)
		if err != nil {
			http.Error(w, "failed to serialize document as "+label, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

const pageLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
%s</head>
<body>
%s</body>
</html>`

func docsPage(cfg *HandleConfig, title, specURL string) string {
	var head, body string
	switch cfg.UI {
	case DocsRapiDoc:
		head = `<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>` + "\n"
		body = fmt.Sprintf("<rapi-doc spec-url=%q></rapi-doc>\n", specURL)
	case DocsRedoc:
		body = fmt.Sprintf("<redoc spec-url=%q></redoc>\n", specURL) +
			`<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>` + "\n"
	default:
		head = `<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">` + "\n"
		body = `<div id="swagger-ui"></div>` + "\n" +
			`<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>` + "\n" +
			fmt.Sprintf("<script>\nSwaggerUIBundle({url: %q, dom_id: \"#swagger-ui\"%s});\n</script>\n", specURL, swaggerUIOptions(cfg.SwaggerUIConfig))
	}
	return fmt.Sprintf(pageLayout, html.EscapeString(title), head, body)
}

// swaggerUIOptions renders extra options as ", key: value" pairs. Values
// that cannot be encoded are skipped.
func swaggerUIOptions(options map[string]any) string {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(options)) {
		value, err := json.Marshal(options[key])
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, ", %s: %s", key, value)
	}
	return b.String()
}

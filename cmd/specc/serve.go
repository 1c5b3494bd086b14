package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalvas/specc/muxhandlers"
	"github.com/vitalvas/specc/swagger"
)

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a compiled manifest with an interactive docs UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return serveRunner(cmd.Context(), cfg, commandStreams(cmd))
		},
	}

	flags := cmd.Flags()
	addDocumentFlags(flags)
	flags.String("addr", "", "Listen address; defaults to :8080")
	flags.String("docs-path", "", "Route prefix of the docs endpoints; defaults to /docs")
	flags.String("docs-ui", "", "Docs UI (swagger-ui|redoc|rapidoc); defaults to swagger-ui")
	flags.StringSlice("cors-origins", nil, "Origins allowed to fetch the documents (exact, * or https://*.example.com)")
	return cmd
}

var docsUIs = map[string]swagger.DocsUI{
	"swagger-ui": swagger.DocsSwaggerUI,
	"redoc":      swagger.DocsRedoc,
	"rapidoc":    swagger.DocsRapiDoc,
}

// newDocsHandler compiles the manifest and registers its endpoints,
// including the OpenAPI 3 conversion, behind the docs middleware.
func newDocsHandler(cfg *Config, logger *zap.Logger) (http.Handler, error) {
	doc, err := compileManifest(cfg, logger)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	swagger.Handle(r, cfg.DocsPath, doc, &swagger.HandleConfig{
		UI:               docsUIs[cfg.DocsUI],
		OpenAPI3Filename: "openapi.json",
	})

	// CORS wraps the router so preflights are answered before method
	// matching rejects OPTIONS.
	middleware := []mux.MiddlewareFunc{muxhandlers.CacheControlMiddleware(muxhandlers.DocumentCacheRules...)}
	if len(cfg.CORSOrigins) > 0 {
		cors, err := muxhandlers.CORSMiddleware(muxhandlers.CORSConfig{AllowedOrigins: cfg.CORSOrigins, MaxAge: 600})
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("serve: --cors-origins: %v", err))
		}
		middleware = append(middleware, cors)
	}
	middleware = append(middleware, muxhandlers.RecoveryMiddleware(logger))

	var handler http.Handler = r
	for _, mw := range middleware {
		handler = mw(handler)
	}
	return handler, nil
}

func runServe(ctx context.Context, cfg *Config, s streams) error {
	logger := newJSONLogger(s.err, cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	handler, err := newDocsHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving documentation", zap.String("addr", cfg.Addr), zap.String("path", cfg.DocsPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

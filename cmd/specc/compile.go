package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vitalvas/specc/manifest"
	"github.com/vitalvas/specc/swagger"
)

// streams carries the command's output writers.
type streams struct {
	out io.Writer
	err io.Writer
}

func commandStreams(cmd *cobra.Command) streams {
	return streams{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

var compileRunner = runCompile

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a manifest into a Swagger 2.0 or OpenAPI 3 document",
		Example: strings.TrimSpace(`  specc compile --manifest api.yaml
  specc compile --manifest api.yaml --format openapi3 --output-format yaml --out openapi.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return compileRunner(cmd.Context(), cfg, commandStreams(cmd))
		},
	}

	flags := cmd.Flags()
	addDocumentFlags(flags)
	flags.String("format", "", "Document flavor (swagger|openapi3); defaults to swagger")
	flags.String("output-format", "", "Encoding (json|yaml); defaults to json")
	flags.StringP("out", "o", "", "Output file; stdout when omitted")
	return cmd
}

func addDocumentFlags(flags *pflag.FlagSet) {
	flags.String("manifest", "", "Path to the service manifest")
	flags.String("host", "", "Override the document host")
	flags.String("base-path", "", "Override the document base path")
}

func runCompile(ctx context.Context, cfg *Config, s streams) error {
	logger := newJSONLogger(s.err, cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	doc, err := compileManifest(cfg, logger)
	if err != nil {
		return err
	}

	data, err := encodeDocument(doc, cfg.Format, cfg.OutputFormat)
	if err != nil {
		return err
	}

	if cfg.Out == "" {
		_, err := s.out.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.Out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Out, err)
	}
	logger.Info("Document written", zap.String("path", cfg.Out), zap.Int("bytes", len(data)))
	return nil
}

// compileManifest loads the manifest and compiles it. Host and base path
// overrides win over the manifest's own values.
func compileManifest(cfg *Config, logger *zap.Logger) (*swagger.Document, error) {
	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return nil, err
	}

	opts := []swagger.Option{swagger.WithLogger(logger)}
	if cfg.Host != "" {
		opts = append(opts, swagger.WithHost(cfg.Host))
	}
	if cfg.BasePath != "" {
		opts = append(opts, swagger.WithBasePath(cfg.BasePath))
	}

	doc, err := m.Compile(opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", cfg.Manifest, err)
	}
	logger.Debug("Manifest compiled",
		zap.String("manifest", cfg.Manifest),
		zap.Int("paths", len(doc.Paths)),
		zap.Int("definitions", len(doc.Definitions)))
	return doc, nil
}

func encodeDocument(doc *swagger.Document, format, encoding string) ([]byte, error) {
	if format == "openapi3" {
		v3, err := doc.ConvertV3()
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(v3, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode openapi 3 document: %w", err)
		}
		if encoding == "yaml" {
			return swagger.JSONToYAML(data)
		}
		return append(data, '\n'), nil
	}

	if encoding == "yaml" {
		return doc.YAML()
	}
	data, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

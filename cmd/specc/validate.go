package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile a manifest and validate the result as OpenAPI 3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg, commandStreams(cmd))
		},
	}
	addDocumentFlags(cmd.Flags())
	return cmd
}

func runValidate(ctx context.Context, cfg *Config, s streams) error {
	logger := newJSONLogger(s.err, cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	doc, err := compileManifest(cfg, logger)
	if err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("%s: %w", cfg.Manifest, err)
	}

	logger.Info("Document is valid", zap.String("manifest", cfg.Manifest))
	fmt.Fprintf(s.out, "%s: valid (%d paths, %d definitions)\n", cfg.Manifest, len(doc.Paths), len(doc.Definitions))
	return nil
}

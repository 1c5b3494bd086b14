package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "specc",
		Short:         "Compile service manifests into Swagger 2.0 documents",
		Long:          "specc reads service declarations from a YAML manifest and compiles them into a Swagger 2.0 document, optionally converted to OpenAPI 3.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error); defaults to warn")

	for _, sub := range []*cobra.Command{newCompileCmd(), newValidateCmd(), newServeCmd()} {
		cmd.AddCommand(sub)
	}

	// Unknown flags print the usage of the command they were passed to.
	setUsageErrors(cmd)
	return cmd
}

func setUsageErrors(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	})
	for _, sub := range cmd.Commands() {
		setUsageErrors(sub)
	}
}

// Command specc compiles YAML service manifests into Swagger 2.0 documents.
//
// Usage:
//
//	specc compile --manifest api.yaml --output-format yaml --out swagger.yaml
//	specc validate --manifest api.yaml
//	specc serve --manifest api.yaml --addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

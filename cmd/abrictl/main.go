// Command abrictl manages the ABRI data store.
//
// It creates the schema, reports health and pool diagnostics, lists
// operator work, and runs a small HTTP server exposing /health, /info and
// /metrics for monitoring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

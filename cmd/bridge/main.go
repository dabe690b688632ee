// Package main starts the bridge render service and handles termination.
//
// The process serves HTTP and WebSocket render requests and a gRPC health
// endpoint; channel bindings live in a local SQLite file.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	bridgecmd "github.com/louisbranch/twbb/internal/cmd/bridge"
	"github.com/louisbranch/twbb/internal/platform/config"
)

func main() {
	cfg, err := bridgecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bridgecmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}

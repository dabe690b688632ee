// Package main runs the twbb operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	twbbcmd "github.com/louisbranch/twbb/internal/cmd/twbb"
	"github.com/louisbranch/twbb/internal/platform/config"
)

func main() {
	cfg, err := twbbcmd.ParseConfig()
	if err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := twbbcmd.Run(ctx, cfg, os.Args[1:], twbbcmd.Options{}); err != nil {
		config.Exitf("twbb: %v", err)
	}
}

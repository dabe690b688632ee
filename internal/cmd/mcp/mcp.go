// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/twbb/internal/platform/cmd"
	"github.com/louisbranch/twbb/internal/platform/logging"
	mcpservice "github.com/louisbranch/twbb/internal/services/mcp/service"
	"github.com/louisbranch/twbb/internal/services/shared/pipeline"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"TWBB_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"TWBB_MCP_TRANSPORT" envDefault:"stdio"`

	pipeline.Settings
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	cfg.Settings.RegisterFlags(fs)
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter. Logs go to stderr so stdio stays
// reserved for the protocol.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named(entrypoint.ServiceMCP)

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMCP, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		p, err := pipeline.New(cfg.Settings.Config(logger))
		if err != nil {
			return err
		}
		if err := mcpservice.Run(ctx, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
			Locale:    cfg.Locale,
		}, mcpservice.Dependencies{
			Renderer:  p,
			Directory: p.Directory,
			Logger:    logger,
		}); err != nil {
			return fmt.Errorf("serve MCP: %w", err)
		}
		return nil
	})
}

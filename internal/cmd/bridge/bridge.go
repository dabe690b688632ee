// Package bridge parses bridge command flags and composes the render service.
package bridge

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/twbb/internal/platform/cmd"
	"github.com/louisbranch/twbb/internal/platform/logging"
	server "github.com/louisbranch/twbb/internal/services/bridge/app"
	"github.com/louisbranch/twbb/internal/services/bridge/storage/sqlite"
	"github.com/louisbranch/twbb/internal/services/shared/pipeline"
	"go.uber.org/zap"
)

// Config holds bridge command configuration.
type Config struct {
	HTTPAddr string `env:"TWBB_HTTP_ADDR" envDefault:":8090"`
	GRPCAddr string `env:"TWBB_GRPC_ADDR" envDefault:":8091"`
	DBPath   string `env:"TWBB_DB_PATH"   envDefault:"data/twbb.db"`
	APIToken string `env:"TWBB_API_TOKEN"`

	pipeline.Settings
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "bridge HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "bridge gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "channel binding SQLite database path")
	cfg.Settings.RegisterFlags(fs)
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the rendering stack and serves the bridge until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named(entrypoint.ServiceBridge)

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceBridge, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		p, err := pipeline.New(cfg.Settings.Config(logger))
		if err != nil {
			return err
		}
		// The table loads lazily on first use too; a failure here is not fatal.
		if err := p.Symbols.Load(ctx, false); err != nil {
			logger.Warn("initial symbol load failed", zap.Error(err))
		}

		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open binding store: %w", err)
		}
		defer store.Close()

		if err := server.Run(ctx, server.Config{
			HTTPAddr: cfg.HTTPAddr,
			GRPCAddr: cfg.GRPCAddr,
			APIToken: cfg.APIToken,
			Locale:   cfg.Locale,
		}, server.Dependencies{
			Renderer:  p,
			Directory: p.Directory,
			Symbols:   p.Symbols,
			Bindings:  store,
			Logger:    logger,
		}); err != nil {
			return fmt.Errorf("serve bridge: %w", err)
		}
		return nil
	})
}

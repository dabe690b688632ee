// Package twbb builds the operator CLI: one-off renders, directory listings
// and bridge health checks.
package twbb

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	entrypoint "github.com/louisbranch/twbb/internal/platform/cmd"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"github.com/louisbranch/twbb/internal/platform/timeouts"
	"github.com/louisbranch/twbb/internal/services/shared/grpcdial"
	"github.com/louisbranch/twbb/internal/services/shared/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

// Config holds CLI configuration.
type Config struct {
	BridgeGRPCAddr string `env:"TWBB_BRIDGE_GRPC_ADDR" envDefault:"localhost:8091"`

	pipeline.Settings
}

// Renderer renders content for a world with localized fallbacks.
type Renderer interface {
	Render(ctx context.Context, content string, wc gamedata.WorldContext, printer *message.Printer) string
}

// Options injects IO and collaborators. Zero values use the process streams
// and the real rendering stack.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	NewRenderer  func(pipeline.Config) (Renderer, error)
	NewDirectory func(pipeline.Config) gamedata.Directory

	// CheckHealth checks a gRPC health endpoint. Nil dials addr with grpcdial.
	CheckHealth func(ctx context.Context, addr string, logger *zap.Logger) error
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.NewRenderer == nil {
		o.NewRenderer = func(cfg pipeline.Config) (Renderer, error) {
			p, err := pipeline.New(cfg)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	if o.NewDirectory == nil {
		o.NewDirectory = func(cfg pipeline.Config) gamedata.Directory {
			return pipeline.NewDirectory(cfg)
		}
	}
	if o.CheckHealth == nil {
		o.CheckHealth = dialHealth
	}
	return o
}

// ParseConfig loads environment defaults into a Config. Flags are bound by
// NewCommand.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the CLI with args under telemetry.
func Run(ctx context.Context, cfg Config, args []string, opts Options) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCLI, func(ctx context.Context) error {
		cmd := NewCommand(&cfg, opts)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(ctx)
	})
}

// NewCommand builds the root command. Settings flags are persistent so every
// subcommand accepts them.
func NewCommand(cfg *Config, opts Options) *cobra.Command {
	opts = opts.withDefaults()

	root := &cobra.Command{
		Use:           "twbb",
		Short:         "Tribal Wars BBCode bridge operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	goFlags := flag.NewFlagSet("twbb", flag.ContinueOnError)
	cfg.Settings.RegisterFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)

	root.AddCommand(
		newRenderCommand(cfg, opts),
		newServersCommand(cfg, opts),
		newWorldsCommand(cfg, opts),
		newHealthCommand(cfg, opts),
	)
	return root
}

func newLogger(cfg *Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, err
	}
	return logger.Named(entrypoint.ServiceCLI), nil
}

func newRenderCommand(cfg *Config, opts Options) *cobra.Command {
	var world, server string
	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Render BBCode tags for a world",
		Long: `Render replaces [coord], [player], [ally], [unit], [building], [command]
and style tags in text with links and emoji for the given world.

Text is read from stdin when no argument is given or the argument is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wc := gamedata.WorldContext{World: strings.TrimSpace(world), Server: strings.TrimSpace(server)}
			if err := wc.Validate(); err != nil {
				return err
			}

			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			renderer, err := opts.NewRenderer(cfg.Settings.Config(logger))
			if err != nil {
				return err
			}
			out := renderer.Render(cmd.Context(), content, wc, catalog.Printer(cfg.Locale))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&world, "world", "", "world key, e.g. pt104")
	cmd.Flags().StringVar(&server, "server", "", "server code, e.g. pt")
	return cmd
}

func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func newServersCommand(cfg *Config, opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List known servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := opts.NewDirectory(cfg.Settings.Config(nil))
			servers, err := dir.Servers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list servers: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, server := range servers {
				if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", server.Code, server.Host, server.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newWorldsCommand(cfg *Config, opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "worlds <server>",
		Short: "List open worlds of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.NewDirectory(cfg.Settings.Config(nil))
			worlds, err := dir.Worlds(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list worlds: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, world := range worlds {
				if _, err := fmt.Fprintf(out, "%s\t%s\n", world.Key, world.URL); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newHealthCommand(cfg *Config, opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the bridge gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := strings.TrimSpace(cfg.BridgeGRPCAddr)
			if addr == "" {
				return errors.New("bridge gRPC address is required")
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := opts.CheckHealth(cmd.Context(), addr, logger); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "bridge %s: SERVING\n", addr)
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BridgeGRPCAddr, "addr", cfg.BridgeGRPCAddr, "bridge gRPC address")
	return cmd
}

func dialHealth(ctx context.Context, addr string, logger *zap.Logger) error {
	conn, err := grpcdial.DialWithHealth(ctx, addr, timeouts.GRPCDial, entrypoint.ServiceBridge, logger)
	if err != nil {
		return err
	}
	return conn.Close()
}

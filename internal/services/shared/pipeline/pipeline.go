// Package pipeline assembles the rendering stack from process configuration
// so every entrypoint wires resolvers the same way.
package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/louisbranch/twbb/internal/entity"
	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/linkfmt"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"github.com/louisbranch/twbb/internal/platform/timeouts"
	"github.com/louisbranch/twbb/internal/render"
	"github.com/louisbranch/twbb/internal/symbol"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

// Config holds the upstream settings shared by all entrypoints.
type Config struct {
	TWHelpBaseURL     string
	DiscordAPIBaseURL string
	DiscordAppID      string
	DiscordToken      string
	Strategy          string
	SnapshotScheme    string
	Locale            string
	// HTTPClient is used for every upstream call. Nil builds one bounded by
	// timeouts.UpstreamRequest.
	HTTPClient *http.Client
	// Registry overrides the Discord emoji registry.
	Registry symbol.Registry
	Logger   *zap.Logger
}

// Pipeline is the assembled rendering stack.
type Pipeline struct {
	Directory *gamedata.TWHelp
	Symbols   *symbol.Resolver
	Entities  *entity.Resolver
	Links     *linkfmt.Formatter
	Renderer  *render.Renderer
	Printer   *message.Printer
}

// NewHTTPClient returns the client used for upstream calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: timeouts.UpstreamRequest}
}

// NewDirectory builds only the twhelp client, for callers that list servers
// and worlds without rendering.
func NewDirectory(cfg Config) *gamedata.TWHelp {
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	return gamedata.NewTWHelp(cfg.TWHelpBaseURL, client)
}

// New builds the full stack. Missing registry credentials are a
// configuration error.
func New(cfg Config) (*Pipeline, error) {
	logger := logging.OrNop(cfg.Logger)
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	cfg.HTTPClient = client

	registry := cfg.Registry
	if registry == nil {
		discord, err := symbol.NewDiscordRegistry(cfg.DiscordAPIBaseURL, cfg.DiscordAppID, cfg.DiscordToken, client)
		if err != nil {
			return nil, fmt.Errorf("symbol registry: %w", err)
		}
		registry = discord
	}

	directory := NewDirectory(cfg)
	strategy, err := entity.NewStrategy(cfg.Strategy, entity.Dependencies{
		Directory: directory,
		Snapshots: gamedata.NewHTTPSnapshots(cfg.SnapshotScheme, client),
	})
	if err != nil {
		return nil, fmt.Errorf("entity strategy: %w", err)
	}

	printer := catalog.Printer(cfg.Locale)
	symbols := symbol.NewResolver(registry, logger.Named("symbol"))
	entities := entity.NewResolver(strategy, logger.Named("entity"))
	links := linkfmt.New(directory, printer, logger.Named("linkfmt"))

	return &Pipeline{
		Directory: directory,
		Symbols:   symbols,
		Entities:  entities,
		Links:     links,
		Printer:   printer,
		Renderer: render.New(render.Config{
			Entities: entities,
			Symbols:  symbols,
			Links:    links,
			Printer:  printer,
			Logger:   logger.Named("render"),
		}),
	}, nil
}

// RendererFor returns a renderer whose fallbacks use printer.
func (p *Pipeline) RendererFor(printer *message.Printer) *render.Renderer {
	if printer == nil {
		return p.Renderer
	}
	return p.Renderer.WithPrinter(printer)
}

// Render runs every pass over content with fallbacks localized by printer.
func (p *Pipeline) Render(ctx context.Context, content string, wc gamedata.WorldContext, printer *message.Printer) string {
	return p.RendererFor(printer).Render(ctx, content, wc)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"github.com/louisbranch/twbb/internal/platform/timeouts"
	"github.com/louisbranch/twbb/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	serverName    = "twbb MCP"
	serverVersion = "0.1.0"

	defaultHTTPAddr = "localhost:8081"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server process.
type Config struct {
	Transport TransportKind
	// HTTPAddr is only used by TransportHTTP. Defaults to localhost:8081.
	HTTPAddr string
	// Locale applies to render requests that do not name one.
	Locale string
}

// Dependencies are the collaborators the tools call into.
type Dependencies struct {
	Renderer  domain.Renderer
	Directory gamedata.Directory
	Logger    *zap.Logger
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
}

// New creates an MCP server with every tool registered.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if deps.Directory == nil {
		return nil, errors.New("directory is required")
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = catalog.BaseLocale
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.RenderTool(), domain.RenderHandler(deps.Renderer, locale))
	mcp.AddTool(mcpServer, domain.ServerListTool(), domain.ServerListHandler(deps.Directory))
	mcp.AddTool(mcpServer, domain.WorldListTool(), domain.WorldListHandler(deps.Directory))

	return &Server{mcpServer: mcpServer, logger: logging.OrNop(deps.Logger)}, nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation
// or the client disconnects.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	server, err := New(cfg, deps)
	if err != nil {
		return err
	}
	switch cfg.Transport {
	case "", TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		addr := strings.TrimSpace(cfg.HTTPAddr)
		if addr == "" {
			addr = defaultHTTPAddr
		}
		return server.ListenAndServeHTTP(ctx, addr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// ListenAndServeHTTP serves the streamable HTTP transport on addr until ctx
// is cancelled.
func (s *Server) ListenAndServeHTTP(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.ServeHTTP(ctx, lis)
}

// ServeHTTP serves the streamable HTTP transport on lis until ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, lis net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("mcp http listening", zap.String("addr", lis.Addr().String()))
		serveErr <- httpServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("shutdown MCP http: %w", err)
		}
		// Open event streams do not drain on their own.
		s.logger.Warn("mcp http shutdown timed out, closing streams")
		_ = httpServer.Close()
	}
	<-serveErr
	return nil
}

// serveWithTransport runs the MCP server on transport until it stops.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	s.logger.Info("mcp serving", zap.String("transport", fmt.Sprintf("%T", transport)))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

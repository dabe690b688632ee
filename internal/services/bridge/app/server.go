// Package server hosts the bridge process: an HTTP and WebSocket surface that
// renders chat BBCode for bound channels, plus a gRPC health endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/twbb/internal/gamedata"
	platformgrpc "github.com/louisbranch/twbb/internal/platform/grpc"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"github.com/louisbranch/twbb/internal/platform/timeouts"
	"github.com/louisbranch/twbb/internal/services/bridge/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"
)

// Renderer renders content for a world with localized fallbacks.
type Renderer interface {
	Render(ctx context.Context, content string, wc gamedata.WorldContext, printer *message.Printer) string
}

// SymbolLoader reloads the emoji table on demand.
type SymbolLoader interface {
	Load(ctx context.Context, force bool) error
}

// Config defines the listen and lifecycle settings for the bridge.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	APIToken          string
	Locale            string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Dependencies are the collaborators the bridge routes call into.
type Dependencies struct {
	Renderer  Renderer
	Directory gamedata.Directory
	Symbols   SymbolLoader
	Bindings  storage.BindingStore
	Logger    *zap.Logger
}

// Server hosts the bridge HTTP/WebSocket and gRPC health listeners.
type Server struct {
	httpAddr        string
	grpcAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	health          *platformgrpc.HealthServer
	logger          *zap.Logger
}

// NewServer builds a configured bridge server.
func NewServer(config Config, deps Dependencies) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if deps.Bindings == nil {
		return nil, errors.New("binding store is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}
	deps.Logger = logging.OrNop(deps.Logger)

	return &Server{
		httpAddr:        httpAddr,
		grpcAddr:        strings.TrimSpace(config.GRPCAddr),
		shutdownTimeout: config.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           newHandler(deps, config.APIToken, config.Locale),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
		health: platformgrpc.NewHealthServer(),
		logger: deps.Logger,
	}, nil
}

// Run creates and serves a bridge server until the context ends.
func Run(ctx context.Context, config Config, deps Dependencies) error {
	server, err := NewServer(config, deps)
	if err != nil {
		return fmt.Errorf("init bridge server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve bridge: %w", err)
	}
	return nil
}

// ListenAndServe opens the configured listeners and serves until ctx ends.
// The gRPC health listener is skipped when no gRPC address is configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("bridge server is nil")
	}
	var lc net.ListenConfig
	httpLis, err := lc.Listen(ctx, "tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.httpAddr, err)
	}
	var grpcLis net.Listener
	if s.grpcAddr != "" {
		grpcLis, err = lc.Listen(ctx, "tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc %s: %w", s.grpcAddr, err)
		}
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs on the given listeners until ctx ends, then shuts both down.
// grpcLis may be nil.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if httpLis == nil {
		return errors.New("http listener is required")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("bridge http listening", zap.String("addr", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	if grpcLis != nil {
		group.Go(func() error {
			s.logger.Info("bridge grpc health listening", zap.String("addr", grpcLis.Addr().String()))
			if err := s.health.Serve(grpcLis); err != nil {
				return fmt.Errorf("serve grpc: %w", err)
			}
			return nil
		})
	}
	s.health.SetServing(true)

	group.Go(func() error {
		<-groupCtx.Done()
		s.health.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return group.Wait()
}

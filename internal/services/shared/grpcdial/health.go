// Package grpcdial labels gRPC dial failures for startup and CLI callers.
package grpcdial

import (
	"context"
	"errors"
	"fmt"
	"time"

	platformgrpc "github.com/louisbranch/twbb/internal/platform/grpc"
	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
)

// DialWithHealth dials a service endpoint and normalizes connect/health errors
// into service-labeled messages.
func DialWithHealth(
	ctx context.Context,
	addr string,
	timeout time.Duration,
	serviceLabel string,
	logger *zap.Logger,
	opts ...gogrpc.DialOption,
) (*gogrpc.ClientConn, error) {
	conn, err := platformgrpc.DialWithHealth(ctx, addr, timeout, logger, opts...)
	if err != nil {
		return nil, NormalizeDialError(serviceLabel, addr, err)
	}
	return conn, nil
}

// NormalizeDialError maps DialError stages into stable error messages.
func NormalizeDialError(serviceLabel, addr string, err error) error {
	var dialErr *platformgrpc.DialError
	if errors.As(err, &dialErr) {
		if dialErr.Stage == platformgrpc.DialStageHealth {
			return fmt.Errorf("%s gRPC health check failed for %s: %w", serviceLabel, addr, dialErr.Err)
		}
		return fmt.Errorf("dial %s gRPC %s: %w", serviceLabel, addr, dialErr.Err)
	}
	return fmt.Errorf("dial %s gRPC %s: %w", serviceLabel, addr, err)
}

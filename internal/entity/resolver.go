package entity

import (
	"context"
	"errors"

	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/louisbranch/twbb/internal/entity")

// Resolver turns strategy outcomes into found or not found. It never
// returns an error; failures other than a miss are logged.
type Resolver struct {
	strategy Strategy
	logger   *zap.Logger
}

// NewResolver wraps strategy. A nil logger discards output.
func NewResolver(strategy Strategy, logger *zap.Logger) *Resolver {
	return &Resolver{strategy: strategy, logger: logging.OrNop(logger)}
}

// Resolve looks up reference in the world wc.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, reference string, wc gamedata.WorldContext) (Record, bool) {
	ctx, span := tracer.Start(ctx, "entity.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity.kind", string(kind)),
		attribute.String("entity.reference", reference),
		attribute.String("world", wc.World),
		attribute.String("server", wc.Server),
	)

	rec, err := r.strategy.Resolve(ctx, kind, reference, wc)
	if err == nil {
		return rec, true
	}

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("reference", reference),
		zap.String("world", wc.World),
		zap.String("server", wc.Server),
	}
	if errors.Is(err, ErrNotFound) {
		r.logger.Debug("entity not found", fields...)
		return nil, false
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.logger.Warn("entity resolution failed", append(fields, zap.Error(err))...)
	return nil, false
}

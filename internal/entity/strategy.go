package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

const (
	// StrategySnapshot scans the world's map dumps.
	StrategySnapshot = "snapshot"
	// StrategyDirectory queries the twhelp index.
	StrategyDirectory = "directory"
)

// Strategy resolves one reference. A miss returns ErrNotFound, possibly
// wrapped.
type Strategy interface {
	Resolve(ctx context.Context, kind Kind, reference string, wc gamedata.WorldContext) (Record, error)
}

// Dependencies holds the data sources strategies are built from.
type Dependencies struct {
	Directory *gamedata.TWHelp
	Snapshots gamedata.Snapshots
}

// NewStrategy builds the strategy named by configuration. An empty name
// selects the snapshot strategy.
func NewStrategy(name string, deps Dependencies) (Strategy, error) {
	if deps.Directory == nil {
		return nil, fmt.Errorf("new strategy: directory is required")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategySnapshot:
		if deps.Snapshots == nil {
			return nil, fmt.Errorf("new strategy: snapshots are required")
		}
		return NewSnapshotStrategy(deps.Directory, deps.Snapshots), nil
	case StrategyDirectory:
		return NewDirectoryStrategy(deps.Directory), nil
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidRequest, "unknown resolver strategy "+name, map[string]string{
			"strategy": name,
		})
	}
}

// notFound wraps ErrNotFound with the reference that missed.
func notFound(kind Kind, reference string) error {
	return fmt.Errorf("%s %q: %w", kind, reference, ErrNotFound)
}

// resolveHost treats an unknown server as a miss so callers fail fast.
func resolveHost(ctx context.Context, hosts gamedata.HostResolver, wc gamedata.WorldContext) (string, error) {
	host, err := hosts.Host(ctx, wc)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeServerNotFound {
			return "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return "", err
	}
	return host, nil
}

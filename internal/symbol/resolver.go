package symbol

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/louisbranch/twbb/internal/bbcode"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"go.uber.org/zap"
)

// Resolver owns the process-wide symbol table. Lookups read the current
// snapshot without locking; a load replaces it wholesale.
type Resolver struct {
	registry Registry
	logger   *zap.Logger

	loadMu sync.Mutex
	table  atomic.Pointer[Table]
}

// NewResolver creates a resolver backed by registry. The table starts empty
// and is filled on the first Ensure or Load.
func NewResolver(registry Registry, logger *zap.Logger) *Resolver {
	r := &Resolver{
		registry: registry,
		logger:   logging.OrNop(logger),
	}
	r.table.Store(emptyTable)
	return r
}

// Ensure loads the table if it is empty.
func (r *Resolver) Ensure(ctx context.Context) {
	_ = r.Load(ctx, false)
}

// Load fetches the registry when the table is empty or force is set. A failed
// load leaves an empty table behind, logs a warning and returns the cause;
// lookups then miss until a later load succeeds.
func (r *Resolver) Load(ctx context.Context, force bool) error {
	if !force && r.Table().Len() > 0 {
		return nil
	}

	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	if !force && r.Table().Len() > 0 {
		return nil
	}
	if r.registry == nil {
		r.table.Store(emptyTable)
		return nil
	}

	entries, err := r.registry.Fetch(ctx)
	if err != nil {
		r.table.Store(emptyTable)
		r.logger.Warn("symbol table load failed", zap.Error(err))
		return fmt.Errorf("fetch symbols: %w", err)
	}
	table, err := NewTable(entries)
	if err != nil {
		r.table.Store(emptyTable)
		r.logger.Warn("symbol table rejected", zap.Error(err))
		return fmt.Errorf("index symbols: %w", err)
	}
	r.table.Store(table)
	r.logger.Debug("symbol table loaded", zap.Int("symbols", table.Len()))
	return nil
}

// Table returns the current snapshot. It is never nil.
func (r *Resolver) Table() *Table {
	return r.table.Load()
}

// Resolve returns the display token for a tag body of the given kind.
func (r *Resolver) Resolve(kind bbcode.Kind, body string) (string, bool) {
	name := Key(kind, body)
	id, ok := r.Table().Lookup(name)
	if !ok {
		return "", false
	}
	return Token(name, id), true
}

// Package sqlite provides a SQLite-backed bridge storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/twbb/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/twbb/internal/services/bridge/storage"
	"github.com/louisbranch/twbb/internal/services/bridge/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists channel bindings in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.BindingStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite bridge store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutBinding inserts or replaces the binding for a channel.
func (s *Store) PutBinding(ctx context.Context, binding storage.Binding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	channelID := strings.TrimSpace(binding.ChannelID)
	world := strings.TrimSpace(binding.World)
	server := strings.TrimSpace(binding.Server)
	if channelID == "" {
		return fmt.Errorf("channel id is required")
	}
	if world == "" || server == "" {
		return fmt.Errorf("world and server are required")
	}
	updatedAt := binding.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO channel_bindings (channel_id, world, server, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(channel_id) DO UPDATE SET
		   world = excluded.world,
		   server = excluded.server,
		   updated_at = excluded.updated_at`,
		channelID,
		world,
		server,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put channel binding: %w", err)
	}
	return nil
}

// GetBinding returns the binding for a channel.
func (s *Store) GetBinding(ctx context.Context, channelID string) (storage.Binding, error) {
	if err := ctx.Err(); err != nil {
		return storage.Binding{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Binding{}, fmt.Errorf("storage is not configured")
	}
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return storage.Binding{}, fmt.Errorf("channel id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT channel_id, world, server, updated_at
		   FROM channel_bindings
		  WHERE channel_id = ?`,
		channelID,
	)
	var binding storage.Binding
	var updatedAt int64
	if err := row.Scan(&binding.ChannelID, &binding.World, &binding.Server, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Binding{}, storage.ErrNotFound
		}
		return storage.Binding{}, fmt.Errorf("get channel binding: %w", err)
	}
	binding.UpdatedAt = fromMillis(updatedAt)
	return binding, nil
}

// DeleteBinding removes the binding for a channel. Missing bindings are not
// an error.
func (s *Store) DeleteBinding(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("channel id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM channel_bindings WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("delete channel binding: %w", err)
	}
	return nil
}

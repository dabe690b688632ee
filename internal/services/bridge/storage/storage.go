// Package storage defines persistence contracts for bridge state.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

// ErrNotFound indicates the channel has no binding.
var ErrNotFound = apperrors.New(apperrors.CodeBindingNotFound, "channel binding not found")

// Binding ties a chat channel to the world its messages refer to.
type Binding struct {
	ChannelID string
	World     string
	Server    string
	UpdatedAt time.Time
}

// BindingStore persists channel bindings.
type BindingStore interface {
	PutBinding(ctx context.Context, binding Binding) error
	GetBinding(ctx context.Context, channelID string) (Binding, error)
	DeleteBinding(ctx context.Context, channelID string) error
}

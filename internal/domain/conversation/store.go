// Package conversation holds the per-conversation state model, its merge
// algebra and the persistence boundary.
package conversation

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a conversation doesn't exist in the store.
var ErrNotFound = errors.New("conversation not found")

// ErrInvalidID is returned when an invalid conversation ID is provided.
var ErrInvalidID = errors.New("invalid conversation ID")

// Store persists conversation state between turns. Implementations apply a
// fixed expiry, refreshed on every successful save; turns for the same
// conversation id are expected to be serialized by the caller.
type Store interface {
	// Load retrieves conversation state by ID. Returns ErrNotFound for
	// unknown conversations.
	Load(ctx context.Context, id string) (*State, error)

	// Save persists conversation state, refreshing its expiry.
	Save(ctx context.Context, id string, state *State) error

	// Delete removes a conversation entirely.
	Delete(ctx context.Context, id string) error
}

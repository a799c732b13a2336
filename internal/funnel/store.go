// Package funnel carries a visitor's data from one funnel step to the next.
//
// Each session owns a handful of named blobs (one per step). A step saves its
// blob once it validates, and later steps load the blobs they depend on. There
// is no schema versioning: a newer save simply overwrites the older blob.
package funnel

import (
	"context"
	"errors"
	"time"
)

// Step keys for the persisted handoff blobs.
const (
	KeyCalculator = "calculator-results"
	KeyUserData   = "user-data"
)

var (
	// ErrNotFound means the session has never saved the requested step.
	ErrNotFound = errors.New("funnel state not found")
	// ErrMalformedState means a blob exists but cannot be decoded. Callers
	// treat it like ErrNotFound and send the visitor back to the start.
	ErrMalformedState = errors.New("funnel state is malformed")
)

// Entry is one persisted blob, as returned by List.
type Entry struct {
	SessionID string
	Step      string
	Data      []byte
	UpdatedAt time.Time
}

// Store persists raw step blobs keyed by (session, step). Implementations
// must be safe for concurrent use; concurrent writers to the same key race
// and the last one wins.
type Store interface {
	Save(ctx context.Context, sessionID, step string, data []byte) error
	// Load returns ErrNotFound when nothing has been saved for the key.
	Load(ctx context.Context, sessionID, step string) ([]byte, error)
	Delete(ctx context.Context, sessionID, step string) error
	// List returns every saved blob for step, most recent first.
	List(ctx context.Context, step string) ([]Entry, error)
}

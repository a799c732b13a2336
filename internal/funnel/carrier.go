package funnel

import (
	"context"
	"encoding/json"
	"fmt"
)

// Carrier is a typed view over a Store. Blobs are JSON-encoded.
type Carrier struct {
	store Store
}

func NewCarrier(store Store) *Carrier {
	return &Carrier{store: store}
}

// Store returns the underlying store.
func (c *Carrier) Store() Store {
	return c.store
}

// Save encodes v and stores it under (sessionID, step), replacing any
// previous blob for that step.
func (c *Carrier) Save(ctx context.Context, sessionID, step string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", step, err)
	}
	if err := c.store.Save(ctx, sessionID, step, data); err != nil {
		return fmt.Errorf("save %s: %w", step, err)
	}
	return nil
}

// Load fetches and decodes the blob for (sessionID, step) into a T.
// Returns ErrNotFound when absent and ErrMalformedState when the stored
// bytes do not decode into T.
func Load[T any](ctx context.Context, c *Carrier, sessionID, step string) (T, error) {
	var zero T
	data, err := c.store.Load(ctx, sessionID, step)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrMalformedState, step, err)
	}
	return v, nil
}

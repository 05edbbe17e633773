package triage

import "context"

// Store is the persistence interface for batch results.
type Store interface {
	Get(ctx context.Context, id string) (*Batch, bool, error)
	Latest(ctx context.Context) (*Batch, bool, error)
	Put(ctx context.Context, batch *Batch) error
}

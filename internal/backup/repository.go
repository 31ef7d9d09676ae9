package backup

import (
	"context"
	"time"
)

// Repository defines the data-access contract.
// Service depends ONLY on this interface.
type Repository interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, orderID string) (*Record, error)
	// Update loads the record, applies fn and persists the result
	// atomically. fn errors abort without writing.
	Update(ctx context.Context, orderID string, fn func(*Record) error) (*Record, error)
	Delete(ctx context.Context, orderID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

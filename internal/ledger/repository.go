package ledger

import (
	"context"
	"time"
)

type Repository interface {
	Record(ctx context.Context, entry *Entry) error
	ListBetween(ctx context.Context, from, to time.Time) ([]Entry, error)
}

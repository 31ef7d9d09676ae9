package backup

import (
	"context"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Record),
	}
}

func (r *InMemoryRepository) Save(ctx context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.OrderID] = record.clone()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, orderID string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return record.clone(), nil
}

func (r *InMemoryRepository) Update(
	ctx context.Context,
	orderID string,
	fn func(*Record) error,
) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[orderID]
	if !ok {
		return nil, ErrNotFound
	}

	working := stored.clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.records[orderID] = working
	return working.clone(), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, orderID)
	return nil
}

func (r *InMemoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, record := range r.records {
		if record.UpdatedAt.Before(cutoff) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

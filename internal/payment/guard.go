package payment

import (
	"sync"

	"github.com/google/uuid"
)

// Guard is a single-slot latch: at most one submission token exists at a
// time. The token doubles as the idempotency key sent to the backend.
type Guard struct {
	mu    sync.Mutex
	token string
}

// Acquire hands out a fresh token, or ErrSubmitting if one is held.
func (g *Guard) Acquire() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" {
		return "", ErrSubmitting
	}
	g.token = uuid.NewString()
	return g.token, nil
}

// Release frees the slot if token is the one currently held.
func (g *Guard) Release(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token == token {
		g.token = ""
	}
}

func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != ""
}

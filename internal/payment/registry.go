package payment

import (
	"fmt"
	"sync"
	"time"

	"gastropos/internal/cash"

	"github.com/shopspring/decimal"
)

// Screen is one open cash screen: the count session plus its submission
// state. Every method is safe for concurrent use.
type Screen struct {
	mu       sync.Mutex
	session  *cash.Session
	state    State
	guard    Guard
	openedAt time.Time
}

func newScreen(denoms *cash.Denominations, order cash.OrderContext, amountDue decimal.Decimal) *Screen {
	session := cash.NewSession(denoms)
	session.LoadOrder(order, amountDue)
	return &Screen{
		session:  session,
		state:    StateIdle,
		openedAt: time.Now(),
	}
}

func (s *Screen) Order() cash.OrderContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Order()
}

func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View is the screen as the POS renders it.
type View struct {
	cash.Snapshot
	State      State `json:"state"`
	Submitting bool  `json:"submitting"`
}

func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Snapshot:   s.session.Snapshot(),
		State:      s.state,
		Submitting: s.guard.Busy(),
	}
}

func (s *Screen) SetDeclaring(declaring bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetDeclaring(declaring)
}

func (s *Screen) SetCount(value cash.Amount, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Counts().SetCount(value, raw)
}

func (s *Screen) Increment(value cash.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Counts().Increment(value)
}

func (s *Screen) Decrement(value cash.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Counts().Decrement(value)
}

// capture freezes what a submission sends.
func (s *Screen) capture() (cash.Snapshot, map[cash.Amount]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot(), s.session.Declared()
}

func (s *Screen) moveTo(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanMoveTo(next) {
		return false
	}
	s.state = next
	return true
}

// ----- registry -----

// Registry holds the open screens keyed by order and split.
type Registry struct {
	mu      sync.Mutex
	denoms  *cash.Denominations
	screens map[string]*Screen
}

func NewRegistry(denoms *cash.Denominations) *Registry {
	return &Registry{
		denoms:  denoms,
		screens: make(map[string]*Screen),
	}
}

func screenKey(orderID string, split int) string {
	return fmt.Sprintf("%s#%d", orderID, split)
}

// Open starts a fresh screen for the order, replacing any previous one.
func (r *Registry) Open(order cash.OrderContext, amountDue decimal.Decimal) *Screen {
	screen := newScreen(r.denoms, order, amountDue)

	r.mu.Lock()
	r.screens[screenKey(order.OrderID, order.Split)] = screen
	r.mu.Unlock()

	return screen
}

func (r *Registry) Get(orderID string, split int) (*Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	screen, ok := r.screens[screenKey(orderID, split)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return screen, nil
}

func (r *Registry) Close(orderID string, split int) {
	r.mu.Lock()
	delete(r.screens, screenKey(orderID, split))
	r.mu.Unlock()
}

// Prune closes screens opened before cutoff that are not mid-submission.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for key, screen := range r.screens {
		if screen.openedAt.Before(cutoff) && !screen.guard.Busy() {
			delete(r.screens, key)
			n++
		}
	}
	return n
}

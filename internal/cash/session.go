package cash

import "github.com/shopspring/decimal"

// OrderContext identifies what is being paid. Split is the portion index
// when the bill was divided, 0 otherwise.
type OrderContext struct {
	OrderID string `json:"order_id"`
	Split   int    `json:"split"`
}

// Session is the state of one cash screen: the loaded order, the amount
// due, the declare toggle and the operator's counts.
type Session struct {
	denoms    *Denominations
	order     OrderContext
	amountDue decimal.Decimal
	declaring bool
	counts    *Counts
}

func NewSession(denoms *Denominations) *Session {
	return &Session{
		denoms:    denoms,
		declaring: true,
		counts:    NewCounts(denoms),
	}
}

// LoadOrder switches the screen to a new order; counts start empty.
func (s *Session) LoadOrder(order OrderContext, amountDue decimal.Decimal) {
	s.order = order
	s.amountDue = amountDue
	s.counts.Reset()
}

// SetDeclaring flips the declare toggle. Any change clears the counts.
func (s *Session) SetDeclaring(declaring bool) {
	if s.declaring == declaring {
		return
	}
	s.declaring = declaring
	s.counts.Reset()
}

func (s *Session) Order() OrderContext        { return s.order }
func (s *Session) AmountDue() decimal.Decimal { return s.amountDue }
func (s *Session) Declaring() bool            { return s.declaring }
func (s *Session) Counts() *Counts            { return s.counts }
func (s *Session) Denominations() *Denominations {
	return s.denoms
}

// Declared is the count map sent to the backend: the operator's counts
// when declaring, empty otherwise.
func (s *Session) Declared() map[Amount]int64 {
	if !s.declaring {
		return map[Amount]int64{}
	}
	return s.counts.Map()
}

// Snapshot is the derived view, recomputed on every call.
type Snapshot struct {
	Order         OrderContext     `json:"order"`
	AmountDue     decimal.Decimal  `json:"amount_due"`
	Declaring     bool             `json:"declaring"`
	Counts        map[Amount]int64 `json:"counts"`
	TotalReceived decimal.Decimal  `json:"total_received"`
	Change        Amount           `json:"change"`
	Breakdown     Breakdown        `json:"breakdown"`
	Sufficient    bool             `json:"sufficient"`
}

func (s *Session) Snapshot() Snapshot {
	return Compute(s.order, s.amountDue, s.declaring, s.counts.Map(), s.denoms)
}

// Compute derives totals, change and breakdown without any session state.
func Compute(order OrderContext, amountDue decimal.Decimal, declaring bool, counts map[Amount]int64, denoms *Denominations) Snapshot {
	if !declaring {
		counts = map[Amount]int64{}
	}
	received := TotalReceived(counts, denoms, declaring, amountDue)
	change := Change(received, amountDue)

	return Snapshot{
		Order:         order,
		AmountDue:     amountDue,
		Declaring:     declaring,
		Counts:        counts,
		TotalReceived: received,
		Change:        change,
		Breakdown:     MakeChange(change, denoms),
		Sufficient:    Sufficient(received, amountDue),
	}
}

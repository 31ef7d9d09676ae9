package ledger

import (
	"context"
	"errors"
	"time"

	"gastropos/internal/cash"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInvalidRange = errors.New("report range is empty or inverted")

type Service struct {
	repo   Repository
	denoms *cash.Denominations
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, denoms *cash.Denominations, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		denoms: denoms,
		logger: logger,
		now:    time.Now,
	}
}

// Record stores a settled payment, assigning its id and timestamp.
func (s *Service) Record(ctx context.Context, e Entry) (*Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.Declared == nil {
		e.Declared = map[cash.Amount]int64{}
	}
	if e.Returned == nil {
		e.Returned = map[cash.Amount]int64{}
	}

	if err := s.repo.Record(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Summary aggregates every payment in [from, to) in a single pass.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	entries, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		From:          from,
		To:            to,
		TotalDue:      decimal.Zero,
		TotalReceived: decimal.Zero,
	}

	received := map[cash.Amount]int64{}
	returned := map[cash.Amount]int64{}

	for _, e := range entries {
		sum.Payments++
		sum.TotalDue = sum.TotalDue.Add(e.AmountDue)
		sum.TotalReceived = sum.TotalReceived.Add(e.Received)
		sum.TotalChange += e.Change

		for v, n := range e.Declared {
			received[v] += n
		}
		for v, n := range e.Returned {
			returned[v] += n
		}
	}

	sum.NetCash = sum.TotalReceived.Sub(decimal.NewFromInt(int64(sum.TotalChange)))

	for _, v := range s.denoms.Values() {
		sum.Denominations = append(sum.Denominations, DenominationTotal{
			Value:    v,
			Received: received[v],
			Returned: returned[v],
			Net:      received[v] - returned[v],
		})
	}

	s.logger.Debug("cash summary computed",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("payments", sum.Payments),
	)
	return sum, nil
}

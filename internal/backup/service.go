package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PortionInput is one payer's base amount and identity at split time.
type PortionInput struct {
	Base           decimal.Decimal `json:"base"`
	DocumentType   string          `json:"tipo_documento"`
	DocumentNumber string          `json:"numero_documento"`
	FullName       string          `json:"nombre_completo"`
	Email          string          `json:"correo_electronico"`

	// Per-payer tip; nil falls back to the request level values.
	TipPercent *decimal.Decimal `json:"propina_porcentaje,omitempty"`
	TipEnabled *bool            `json:"propina_activa,omitempty"`
}

// CreateRequest describes how an order is being paid. Tips are on unless
// propina_activa says otherwise.
type CreateRequest struct {
	OrderID    string          `json:"pedido_id"`
	Discount   decimal.Decimal `json:"descuento"`
	TipPercent decimal.Decimal `json:"propina_porcentaje"`
	TipEnabled *bool           `json:"propina_activa"`
	Portions   []PortionInput  `json:"pagos"`
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create prices each portion and stores the record, replacing any
// previous one for the order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order id required", ErrInvalidRecord)
	}
	if len(req.Portions) == 0 {
		return nil, fmt.Errorf("%w: at least one portion required", ErrInvalidRecord)
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidRecord)
	}

	now := s.now()
	record := &Record{
		OrderID:   req.OrderID,
		Discount:  req.Discount,
		Split:     len(req.Portions) > 1,
		Portions:  make([]Portion, 0, len(req.Portions)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for i, in := range req.Portions {
		if in.Base.IsNegative() {
			return nil, fmt.Errorf("%w: portion %d has a negative base", ErrInvalidRecord, i)
		}
		tipPercent, tipEnabled := req.tipFor(in)
		if tipPercent.IsNegative() {
			return nil, fmt.Errorf("%w: portion %d has a negative tip percent", ErrInvalidRecord, i)
		}
		due, tip := Price(in.Base, req.Discount, tipPercent, tipEnabled)
		record.Portions = append(record.Portions, Portion{
			AmountDue:      due,
			Tip:            tip,
			DocumentType:   in.DocumentType,
			DocumentNumber: in.DocumentNumber,
			FullName:       in.FullName,
			Email:          in.Email,
		})
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("backup record created",
		zap.String("order_id", record.OrderID),
		zap.Int("portions", len(record.Portions)),
	)
	return record, nil
}

// tipFor resolves the tip settings of one portion.
func (req CreateRequest) tipFor(in PortionInput) (decimal.Decimal, bool) {
	percent := req.TipPercent
	if in.TipPercent != nil {
		percent = *in.TipPercent
	}

	enabled := true
	switch {
	case in.TipEnabled != nil:
		enabled = *in.TipEnabled
	case req.TipEnabled != nil:
		enabled = *req.TipEnabled
	}
	return percent, enabled
}

func (s *Service) Get(ctx context.Context, orderID string) (*Record, error) {
	return s.repo.Get(ctx, orderID)
}

// MarkPaid flags one portion as paid. When that settles the order the
// record is cleared and settled is true.
func (s *Service) MarkPaid(ctx context.Context, orderID string, split int) (settled bool, err error) {
	record, err := s.repo.Update(ctx, orderID, func(r *Record) error {
		p, err := r.Portion(split)
		if err != nil {
			return err
		}
		if p.Paid {
			return ErrAlreadyPaid
		}
		p.Paid = true
		r.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return false, err
	}

	if !record.Settled() {
		return false, nil
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		return true, fmt.Errorf("clear settled record: %w", err)
	}

	s.logger.Info("order settled, backup cleared", zap.String("order_id", orderID))
	return true, nil
}

func (s *Service) Clear(ctx context.Context, orderID string) error {
	return s.repo.Delete(ctx, orderID)
}

// SweepStale removes records untouched for longer than ttl.
func (s *Service) SweepStale(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("stale backup records removed", zap.Int64("count", n))
	}
	return n, nil
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gastropos/internal/backup"
	"gastropos/internal/billing"
	"gastropos/internal/cash"
	"gastropos/internal/ledger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSubmitting          = errors.New("a payment is already being submitted")
	ErrAlreadySubmitted    = errors.New("payment already registered for this screen")
	ErrInsufficientFunds   = errors.New("cash received does not cover the amount due")
	ErrPaymentInfoNotFound = errors.New("payment information not found for order")
	ErrPaymentFailed       = errors.New("payment registration failed")
	ErrSessionNotFound     = errors.New("cash session not found")
)

// PDFNotice is shown when the payment went through but no viewable
// invoice came back.
const PDFNotice = "Factura procesada, pero no se pudo obtener el PDF válido"

// ----- collaborators -----

type Backups interface {
	Get(ctx context.Context, orderID string) (*backup.Record, error)
	MarkPaid(ctx context.Context, orderID string, split int) (bool, error)
}

type Biller interface {
	RegisterPayment(ctx context.Context, req billing.PaymentRequest, idempotencyKey string) (billing.Invoice, error)
	FetchInvoicePDF(ctx context.Context, invoiceID string) (billing.Document, error)
}

type Ledger interface {
	Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
}

type InvoiceStore interface {
	Put(ctx context.Context, invoiceID string, pdf []byte) (string, error)
}

// Defaults fill optional customer data the cashier left blank.
type Defaults struct {
	Address string
	Phone   string
	DV      string
	Notes   string
}

// Optional is the customer data the cashier may type on the screen.
type Optional struct {
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	DV      string `json:"dv"`
	Notes   string `json:"nota"`
}

// Result is what the POS shows after a submission.
type Result struct {
	State         State                 `json:"state"`
	InvoiceID     string                `json:"invoice_id"`
	Invoice       billing.Invoice       `json:"invoice"`
	PDFURL        string                `json:"pdf_url,omitempty"`
	PDFSkipped    bool                  `json:"pdf_skipped"`
	Notice        string                `json:"notice,omitempty"`
	Settled       bool                  `json:"settled"`
	TotalReceived decimal.Decimal       `json:"total_received"`
	Change        cash.Amount           `json:"change"`
	Breakdown     map[cash.Amount]int64 `json:"breakdown"`
}

type Service struct {
	backups  Backups
	biller   Biller
	ledger   Ledger
	store    InvoiceStore
	registry *Registry
	defaults Defaults
	logger   *zap.Logger
}

func NewService(
	backups Backups,
	biller Biller,
	ledger Ledger,
	store InvoiceStore,
	registry *Registry,
	defaults Defaults,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backups:  backups,
		biller:   biller,
		ledger:   ledger,
		store:    store,
		registry: registry,
		defaults: defaults,
		logger:   logger,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Open loads the order's portion from its backup record into a fresh
// screen with empty counts.
func (s *Service) Open(ctx context.Context, orderID string, split int) (*Screen, error) {
	_, portion, err := s.lookup(ctx, orderID, split)
	if err != nil {
		return nil, err
	}

	order := cash.OrderContext{OrderID: orderID, Split: split}
	return s.registry.Open(order, portion.AmountDue), nil
}

// Submit runs one payment attempt for the screen. Insufficient funds and
// a missing backup record stop it before anything is sent. Once the
// backend has accepted the payment the attempt succeeds even when the
// invoice PDF cannot be shown.
func (s *Service) Submit(ctx context.Context, screen *Screen, opt Optional, cashierID string) (*Result, error) {
	token, err := screen.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer screen.guard.Release(token)

	if screen.State() == StateSuccess {
		return nil, ErrAlreadySubmitted
	}

	snap, declared := screen.capture()
	order := snap.Order
	log := s.logger.With(
		zap.String("order_id", order.OrderID),
		zap.Int("split", order.Split),
		zap.String("submission", token),
	)

	if !snap.Sufficient {
		return nil, ErrInsufficientFunds
	}

	record, portion, err := s.lookup(ctx, order.OrderID, order.Split)
	if err != nil {
		if errors.Is(err, ErrPaymentInfoNotFound) {
			log.Warn("no backup record for order, payment not submitted")
		}
		return nil, err
	}
	if portion.Paid {
		return nil, backup.ErrAlreadyPaid
	}

	if !screen.moveTo(StateSubmitting) {
		return nil, ErrSubmitting
	}

	req := s.buildRequest(order.OrderID, record, portion, declared, opt)
	invoice, err := s.biller.RegisterPayment(ctx, req, token)
	if err != nil {
		screen.moveTo(StateFailed)
		screen.moveTo(StateIdle)
		log.Error("payment registration failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}
	screen.moveTo(StateSuccess)
	log.Info("payment registered", zap.String("invoice_id", invoice.ID))

	result := &Result{
		State:         StateSuccess,
		InvoiceID:     invoice.ID,
		Invoice:       invoice,
		TotalReceived: snap.TotalReceived,
		Change:        snap.Change,
		Breakdown:     snap.Breakdown.Counts,
	}

	if url, err := s.fetchPDF(ctx, invoice.ID); err != nil {
		log.Warn("invoice pdf unavailable", zap.Error(err))
		result.PDFSkipped = true
		result.Notice = PDFNotice
	} else {
		result.PDFURL = url
	}

	settled, err := s.backups.MarkPaid(ctx, order.OrderID, order.Split)
	if err != nil {
		log.Error("failed to mark backup portion paid", zap.Error(err))
	}
	result.Settled = settled

	if s.ledger != nil {
		_, err := s.ledger.Record(ctx, ledger.Entry{
			OrderID:   order.OrderID,
			Split:     order.Split,
			InvoiceID: invoice.ID,
			CashierID: cashierID,
			AmountDue: snap.AmountDue,
			Received:  snap.TotalReceived,
			Change:    snap.Change,
			Declared:  declared,
			Returned:  snap.Breakdown.Counts,
		})
		if err != nil {
			log.Error("failed to record cash ledger entry", zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) lookup(ctx context.Context, orderID string, split int) (*backup.Record, *backup.Portion, error) {
	record, err := s.backups.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			return nil, nil, ErrPaymentInfoNotFound
		}
		return nil, nil, err
	}

	portion, err := record.Portion(split)
	if err != nil {
		return nil, nil, ErrPaymentInfoNotFound
	}
	return record, portion, nil
}

func (s *Service) fetchPDF(ctx context.Context, invoiceID string) (string, error) {
	doc, err := s.biller.FetchInvoicePDF(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if !doc.IsPDF() {
		return "", fmt.Errorf("unexpected content type %q", doc.ContentType)
	}
	if s.store == nil {
		return "", errors.New("no invoice store configured")
	}
	return s.store.Put(ctx, invoiceID, doc.Body)
}

func (s *Service) buildRequest(
	orderID string,
	record *backup.Record,
	portion *backup.Portion,
	declared map[cash.Amount]int64,
	opt Optional,
) billing.PaymentRequest {
	return billing.PaymentRequest{
		OrderID:        orderID,
		DocumentNumber: portion.DocumentNumber,
		FullName:       portion.FullName,
		Email:          portion.Email,
		DocumentType:   portion.DocumentType,
		Address:        orDefault(opt.Address, s.defaults.Address),
		Phone:          orDefault(opt.Phone, s.defaults.Phone),
		DV:             orDefault(opt.DV, s.defaults.DV),
		Discount:       billing.Number(record.Discount),
		Tip:            billing.Number(portion.Tip),
		Notes:          orDefault(opt.Notes, s.defaults.Notes),
		AmountPaid:     billing.Number(portion.Subtotal()),
		Cash:           true,
		CashCounts:     billing.CountsPayload(declared),
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

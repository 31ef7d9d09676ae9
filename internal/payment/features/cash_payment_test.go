package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"gastropos/internal/backup"
	"gastropos/internal/billing"
	"gastropos/internal/cash"
	"gastropos/internal/ledger"
	"gastropos/internal/payment"
	"gastropos/internal/storage"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

// fakeBiller stands in for the invoicing backend.
type fakeBiller struct {
	mu          sync.Mutex
	down        bool
	contentType string
	requests    []billing.PaymentRequest
}

func (b *fakeBiller) RegisterPayment(ctx context.Context, req billing.PaymentRequest, key string) (billing.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)
	if b.down {
		return billing.Invoice{}, &billing.StatusError{Status: 503, Message: "backend unavailable"}
	}
	return billing.Invoice{ID: fmt.Sprintf("fac-%d", len(b.requests))}, nil
}

func (b *fakeBiller) FetchInvoicePDF(ctx context.Context, invoiceID string) (billing.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return billing.Document{ContentType: b.contentType, Body: []byte("%PDF-1.7")}, nil
}

type cashPaymentTestContext struct {
	biller  *fakeBiller
	backups *backup.Service
	service *payment.Service
	screen  *payment.Screen
	result  *payment.Result
	err     error
}

func (c *cashPaymentTestContext) reset() {
	denoms := cash.DefaultDenominations()
	c.biller = &fakeBiller{contentType: "application/pdf"}
	c.backups = backup.NewService(backup.NewInMemoryRepository(), nil)
	c.service = payment.NewService(
		c.backups,
		c.biller,
		ledger.NewService(ledger.NewInMemoryRepository(), denoms, nil),
		storage.NewMemoryStore("http://pos.local"),
		payment.NewRegistry(denoms),
		payment.Defaults{Address: "KR 3A 17 98", Phone: "3503590606", DV: "0", Notes: "SIN NOTA"},
		nil,
	)
	c.screen = nil
	c.result = nil
	c.err = nil
}

// Given steps

func (c *cashPaymentTestContext) theBillingBackendAcceptsPayments() error {
	c.biller.mu.Lock()
	c.biller.down = false
	c.biller.mu.Unlock()
	return nil
}

func (c *cashPaymentTestContext) theBillingBackendIsDown() error {
	c.biller.mu.Lock()
	c.biller.down = true
	c.biller.mu.Unlock()
	return nil
}

func (c *cashPaymentTestContext) theBillingBackendReturnsInvoicesAs(contentType string) error {
	c.biller.mu.Lock()
	c.biller.contentType = contentType
	c.biller.mu.Unlock()
	return nil
}

func (c *cashPaymentTestContext) orderIsWaitingFor(orderID string, amount string) error {
	base, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := c.backups.Create(ctx, backup.CreateRequest{
		OrderID:  orderID,
		Portions: []backup.PortionInput{{Base: base, FullName: "Cliente"}},
	}); err != nil {
		return err
	}
	c.screen, err = c.service.Open(ctx, orderID, 0)
	return err
}

func (c *cashPaymentTestContext) theCashierDoesNotDeclarePieces() error {
	c.screen.SetDeclaring(false)
	return nil
}

// When steps

func (c *cashPaymentTestContext) theCashierReceives(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // skip header
		}
		value, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		if err := c.screen.SetCount(cash.Amount(value), row.Cells[1].Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *cashPaymentTestContext) theCashierSubmitsThePayment() error {
	c.result, c.err = c.service.Submit(context.Background(), c.screen, payment.Optional{}, "caja-1")
	return nil
}

// Then steps

func (c *cashPaymentTestContext) theTotalReceivedIs(amount string) error {
	want, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	if got := c.screen.View().TotalReceived; !got.Equal(want) {
		return fmt.Errorf("expected total received %s, got %s", want, got)
	}
	return nil
}

func (c *cashPaymentTestContext) theChangeIs(amount int) error {
	if got := c.screen.View().Change; got != cash.Amount(amount) {
		return fmt.Errorf("expected change %d, got %d", amount, got)
	}
	return nil
}

func (c *cashPaymentTestContext) theChangeIsReturnedAs(table *godog.Table) error {
	want := map[cash.Amount]int64{}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		var value, count int64
		fmt.Sscan(row.Cells[0].Value, &value)
		fmt.Sscan(row.Cells[1].Value, &count)
		want[cash.Amount(value)] = count
	}

	got := c.screen.View().Breakdown.Counts
	if len(got) != len(want) {
		return fmt.Errorf("expected breakdown %v, got %v", want, got)
	}
	for value, count := range want {
		if got[value] != count {
			return fmt.Errorf("expected %d x %d, got %d", count, value, got[value])
		}
	}
	return nil
}

func (c *cashPaymentTestContext) thePaymentSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.result == nil || c.result.State != payment.StateSuccess {
		return errors.New("expected a successful result")
	}
	return nil
}

func (c *cashPaymentTestContext) thePaymentIsRejectedWith(message string) error {
	if c.err == nil {
		return errors.New("expected the payment to be rejected")
	}
	if !strings.Contains(c.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *cashPaymentTestContext) theScreenIs(state string) error {
	if got := c.screen.State(); string(got) != state {
		return fmt.Errorf("expected screen %q, got %q", state, got)
	}
	return nil
}

func (c *cashPaymentTestContext) theBillingBackendWasNotCalled() error {
	c.biller.mu.Lock()
	defer c.biller.mu.Unlock()
	if n := len(c.biller.requests); n != 0 {
		return fmt.Errorf("expected no backend calls, got %d", n)
	}
	return nil
}

func (c *cashPaymentTestContext) theBackendReceivedNoCashCounts() error {
	c.biller.mu.Lock()
	defer c.biller.mu.Unlock()
	if len(c.biller.requests) == 0 {
		return errors.New("backend was not called")
	}
	last := c.biller.requests[len(c.biller.requests)-1]
	if len(last.CashCounts) != 0 {
		return fmt.Errorf("expected empty cash counts, got %v", last.CashCounts)
	}
	return nil
}

func (c *cashPaymentTestContext) theInvoicePdfIsShown() error {
	if c.result.PDFSkipped || c.result.PDFURL == "" {
		return errors.New("expected an invoice pdf url")
	}
	return nil
}

func (c *cashPaymentTestContext) theInvoicePdfIsNotShown() error {
	if !c.result.PDFSkipped || c.result.PDFURL != "" {
		return fmt.Errorf("expected no pdf, got %q", c.result.PDFURL)
	}
	return nil
}

func (c *cashPaymentTestContext) theNoticeIsDisplayed(notice string) error {
	if c.result.Notice != notice {
		return fmt.Errorf("expected notice %q, got %q", notice, c.result.Notice)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cashPaymentTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the billing backend accepts payments$`, tc.theBillingBackendAcceptsPayments)
	ctx.Step(`^the billing backend is down$`, tc.theBillingBackendIsDown)
	ctx.Step(`^the billing backend returns invoices as "([^"]*)"$`, tc.theBillingBackendReturnsInvoicesAs)
	ctx.Step(`^order "([^"]*)" is waiting for (\d+(?:\.\d+)?)$`, tc.orderIsWaitingFor)
	ctx.Step(`^the cashier does not declare pieces$`, tc.theCashierDoesNotDeclarePieces)

	// When steps
	ctx.Step(`^the cashier receives:$`, tc.theCashierReceives)
	ctx.Step(`^the cashier submits the payment$`, tc.theCashierSubmitsThePayment)

	// Then steps
	ctx.Step(`^the total received is (\d+(?:\.\d+)?)$`, tc.theTotalReceivedIs)
	ctx.Step(`^the change is (\d+)$`, tc.theChangeIs)
	ctx.Step(`^the change is returned as:$`, tc.theChangeIsReturnedAs)
	ctx.Step(`^the payment succeeds$`, tc.thePaymentSucceeds)
	ctx.Step(`^the payment is rejected with "([^"]*)"$`, tc.thePaymentIsRejectedWith)
	ctx.Step(`^the screen is "([^"]*)"$`, tc.theScreenIs)
	ctx.Step(`^the billing backend was not called$`, tc.theBillingBackendWasNotCalled)
	ctx.Step(`^the backend received no cash counts$`, tc.theBackendReceivedNoCashCounts)
	ctx.Step(`^the invoice pdf is shown$`, tc.theInvoicePdfIsShown)
	ctx.Step(`^the invoice pdf is not shown$`, tc.theInvoicePdfIsNotShown)
	ctx.Step(`^the notice "([^"]*)" is displayed$`, tc.theNoticeIsDisplayed)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/cash_payment.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

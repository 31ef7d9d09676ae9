package ledger

import (
	"time"

	"gastropos/internal/cash"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one settled cash payment.
type Entry struct {
	ID        uuid.UUID             `json:"id"`
	OrderID   string                `json:"order_id"`
	Split     int                   `json:"split"`
	InvoiceID string                `json:"invoice_id"`
	CashierID string                `json:"cashier_id"`
	AmountDue decimal.Decimal       `json:"amount_due"`
	Received  decimal.Decimal       `json:"received"`
	Change    cash.Amount           `json:"change"`
	Declared  map[cash.Amount]int64 `json:"declared"`
	Returned  map[cash.Amount]int64 `json:"returned"`
	CreatedAt time.Time             `json:"created_at"`
}

// DenominationTotal counts pieces of one value across a period.
type DenominationTotal struct {
	Value    cash.Amount `json:"value"`
	Received int64       `json:"received"`
	Returned int64       `json:"returned"`
	Net      int64       `json:"net"`
}

// Summary aggregates cash payments between From (inclusive) and To (exclusive).
type Summary struct {
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	Payments      int                 `json:"payments"`
	TotalDue      decimal.Decimal     `json:"total_due"`
	TotalReceived decimal.Decimal     `json:"total_received"`
	TotalChange   cash.Amount         `json:"total_change"`
	NetCash       decimal.Decimal     `json:"net_cash"`
	Denominations []DenominationTotal `json:"denominations"`
}

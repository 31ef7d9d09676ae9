package backup

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("backup record not found")
	ErrPortionNotFound = errors.New("split portion not found")
	ErrAlreadyPaid     = errors.New("split portion already paid")
	ErrInvalidRecord   = errors.New("invalid backup record")
)

// Portion is one payer's share of an order. Unsplit orders have exactly one.
type Portion struct {
	AmountDue      decimal.Decimal `json:"monto_a_pagar"`
	Tip            decimal.Decimal `json:"propina"`
	Paid           bool            `json:"pagada"`
	DocumentType   string          `json:"tipo_documento"`
	DocumentNumber string          `json:"numero_documento"`
	FullName       string          `json:"nombre_completo"`
	Email          string          `json:"correo_electronico"`
}

// Record is the cached payment state of an order, written when the bill
// is split and consumed by the cash screen.
type Record struct {
	OrderID   string          `json:"pedido_id"`
	Discount  decimal.Decimal `json:"descuento"`
	Split     bool            `json:"dividido"`
	Portions  []Portion       `json:"pagos"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Portion returns the share at index split.
func (r *Record) Portion(split int) (*Portion, error) {
	if split < 0 || split >= len(r.Portions) {
		return nil, ErrPortionNotFound
	}
	return &r.Portions[split], nil
}

// Settled reports whether every portion has been paid.
func (r *Record) Settled() bool {
	for _, p := range r.Portions {
		if !p.Paid {
			return false
		}
	}
	return len(r.Portions) > 0
}

func (r *Record) clone() *Record {
	c := *r
	c.Portions = make([]Portion, len(r.Portions))
	copy(c.Portions, r.Portions)
	return &c
}

package billing

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the body of POST /facturas. CashCounts is keyed by
// denomination value and is always sent for cash, even when empty.
type PaymentRequest struct {
	OrderID        string           `json:"pedido_id"`
	DocumentNumber string           `json:"numero_documento"`
	FullName       string           `json:"nombre_completo"`
	Email          string           `json:"correo_electronico"`
	DocumentType   string           `json:"tipo_documento"`
	Address        string           `json:"direccion"`
	Phone          string           `json:"telefono"`
	DV             string           `json:"DV"`
	Discount       json.Number      `json:"descuentos"`
	Tip            json.Number      `json:"propina"`
	Notes          string           `json:"notas"`
	AmountPaid     json.Number      `json:"monto_pagado"`
	Cash           bool             `json:"es_efectivo"`
	CashCounts     map[string]int64 `json:"denominaciones_efectivo"`
	AccountID      string           `json:"cuenta_id,omitempty"`
}

// Number renders a decimal as a bare JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// CountsPayload converts a denomination count map to the wire shape.
// The result is never nil.
func CountsPayload[K ~int64](counts map[K]int64) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for value, n := range counts {
		out[strconv.FormatInt(int64(value), 10)] = n
	}
	return out
}

// Invoice is the subset of the backend invoice the cash flow reads.
type Invoice struct {
	ID        string          `json:"id"`
	Type      string          `json:"tipo_factura"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tip       decimal.Decimal `json:"propina"`
	Total     decimal.Decimal `json:"total_factura"`
	SalesCode string          `json:"sales_code"`
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("invoice document not found")
	ErrEmptyInvoice = errors.New("invoice id required")
)

// InvoiceStore keeps rendered invoice PDFs so the POS can open them by URL.
type InvoiceStore interface {
	// Put stores the document and returns the URL the viewer opens.
	Put(ctx context.Context, invoiceID string, pdf []byte) (string, error)
	Get(ctx context.Context, invoiceID string) ([]byte, error)
	// Release drops the document once the viewer is closed.
	Release(ctx context.Context, invoiceID string) error
}

// ObjectKey is where an invoice PDF lives inside a bucket.
func ObjectKey(invoiceID string) (string, error) {
	id := strings.TrimSpace(invoiceID)
	if id == "" || strings.ContainsAny(id, "/\\") {
		return "", ErrEmptyInvoice
	}
	return fmt.Sprintf("invoices/%s.pdf", id), nil
}

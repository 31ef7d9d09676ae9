package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPayment_SendsPayloadAndHeaders(t *testing.T) {
	var (
		gotAuth string
		gotKey  string
		gotBody map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/facturas", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"fac-1","total_factura":"23700.00","sales_code":"SC9"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", 0)
	ctx := WithToken(context.Background(), "tok")

	inv, err := client.RegisterPayment(ctx, PaymentRequest{
		OrderID:    "42",
		Discount:   Number(decimal.Zero),
		Tip:        Number(decimal.Zero),
		AmountPaid: Number(decimal.NewFromInt(23700)),
		Cash:       true,
		CashCounts: CountsPayload(map[int64]int64{20000: 1, 5000: 1}),
	}, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "fac-1", inv.ID)
	assert.True(t, decimal.NewFromInt(23700).Equal(inv.Total))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, float64(23700), gotBody["monto_pagado"])
	assert.Equal(t, true, gotBody["es_efectivo"])
	assert.Equal(t, map[string]any{"20000": float64(1), "5000": float64(1)}, gotBody["denominaciones_efectivo"])
	assert.NotContains(t, gotBody, "cuenta_id")
}

func TestRegisterPayment_EmptyCountsStillSent(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"data":{"id":"x"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).RegisterPayment(context.Background(), PaymentRequest{
		Discount:   "0",
		Tip:        "0",
		AmountPaid: "15000",
		Cash:       true,
		CashCounts: CountsPayload(map[int64]int64{}),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, gotBody["denominaciones_efectivo"])
}

func TestRegisterPayment_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"pedido ya pagado"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).RegisterPayment(context.Background(), PaymentRequest{Discount: "0", Tip: "0", AmountPaid: "1"}, "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Equal(t, "pedido ya pagado", statusErr.Message)

	noID := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer noID.Close()

	_, err = NewClient(noID.URL, 0).RegisterPayment(context.Background(), PaymentRequest{Discount: "0", Tip: "0", AmountPaid: "1"}, "")
	assert.ErrorIs(t, err, ErrMissingInvoiceID)

	_, err = NewClient("", 0).RegisterPayment(context.Background(), PaymentRequest{}, "")
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}

func TestFetchInvoicePDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/facturas/fac-1/pdf":
			w.Header().Set("Content-Type", "application/pdf; charset=binary")
			_, _ = w.Write([]byte("%PDF-1.7 body"))
		case "/facturas/fac-2/pdf":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)

	doc, err := client.FetchInvoicePDF(context.Background(), "fac-1")
	require.NoError(t, err)
	assert.True(t, doc.IsPDF())
	assert.Equal(t, "%PDF-1.7 body", string(doc.Body))

	doc, err = client.FetchInvoicePDF(context.Background(), "fac-2")
	require.NoError(t, err)
	assert.False(t, doc.IsPDF())

	_, err = client.FetchInvoicePDF(context.Background(), "nope")
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestNonSuccessStatusIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	_, err := c.RegisterPayment(context.Background(), PaymentRequest{OrderID: "1"}, "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusNotModified, statusErr.Status)

	_, err = c.FetchInvoicePDF(context.Background(), "fac-1")
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusNotModified, statusErr.Status)
}

func TestFetchInvoicePDF_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size := 16
		if r.URL.Path == "/facturas/big/pdf" {
			size = 17
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(make([]byte, size))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	c.maxPDF = 16

	doc, err := c.FetchInvoicePDF(context.Background(), "small")
	require.NoError(t, err)
	assert.Len(t, doc.Body, 16)

	_, err = c.FetchInvoicePDF(context.Background(), "big")
	assert.ErrorIs(t, err, ErrPDFTooLarge)
}

func TestDocumentIsPDF(t *testing.T) {
	assert.True(t, Document{ContentType: "application/pdf"}.IsPDF())
	assert.True(t, Document{ContentType: "Application/PDF"}.IsPDF())
	assert.False(t, Document{ContentType: ""}.IsPDF())
	assert.False(t, Document{ContentType: "application/json"}.IsPDF())
}

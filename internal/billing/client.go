package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	idempotencyHeader = "Idempotency-Key"
	maxPDFSize        = 20 << 20
)

var (
	ErrMissingInvoiceID = errors.New("billing: response has no invoice id")
	ErrMissingBaseURL   = errors.New("billing: base url not configured")
	ErrPDFTooLarge      = errors.New("billing: invoice pdf exceeds size limit")
)

// StatusError is a non-2xx answer from the billing backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing: status %d", e.Status)
	}
	return fmt.Sprintf("billing: status %d: %s", e.Status, e.Message)
}

// Client talks to the remote invoicing backend.
type Client struct {
	baseURL string
	http    *http.Client
	maxPDF  int64
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		maxPDF:  maxPDFSize,
	}
}

// ----- auth token -----

type tokenKey struct{}

// WithToken attaches the cashier's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// ----- register payment -----

// RegisterPayment books the payment and returns the invoice the backend
// created for it. idempotencyKey is sent as-is.
func (c *Client) RegisterPayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (Invoice, error) {
	if c.baseURL == "" {
		return Invoice{}, ErrMissingBaseURL
	}

	endpoint, err := url.JoinPath(c.baseURL, "facturas")
	if err != nil {
		return Invoice{}, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Invoice{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Invoice{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set(idempotencyHeader, idempotencyKey)
	}
	c.authorize(ctx, httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Invoice{}, err
	}
	defer resp.Body.Close()

	if !successful(resp) {
		return Invoice{}, statusError(resp)
	}

	var envelope struct {
		Data *Invoice `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Invoice{}, fmt.Errorf("billing: decode invoice: %w", err)
	}
	if envelope.Data == nil || strings.TrimSpace(envelope.Data.ID) == "" {
		return Invoice{}, ErrMissingInvoiceID
	}

	return *envelope.Data, nil
}

// ----- invoice pdf -----

// Document is a fetched invoice rendering.
type Document struct {
	ContentType string
	Body        []byte
}

// IsPDF checks the declared media type.
func (d Document) IsPDF() bool {
	mediaType, _, err := mime.ParseMediaType(d.ContentType)
	if err != nil {
		return false
	}
	return mediaType == "application/pdf"
}

func (c *Client) FetchInvoicePDF(ctx context.Context, invoiceID string) (Document, error) {
	if c.baseURL == "" {
		return Document{}, ErrMissingBaseURL
	}

	endpoint, err := url.JoinPath(c.baseURL, "facturas", invoiceID, "pdf")
	if err != nil {
		return Document{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Document{}, err
	}
	httpReq.Header.Set("Accept", "application/pdf")
	c.authorize(ctx, httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()

	if !successful(resp) {
		return Document{}, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPDF+1))
	if err != nil {
		return Document{}, err
	}
	if int64(len(body)) > c.maxPDF {
		return Document{}, ErrPDFTooLarge
	}

	return Document{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func successful(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// statusError prefers the backend's {"message": ...} body.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = body.Message
	}

	return &StatusError{Status: resp.StatusCode, Message: msg}
}

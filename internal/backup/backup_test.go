package backup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boolPtr(b bool) *bool { return &b }

func newTestService(now time.Time) (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestPrice(t *testing.T) {
	due, tip := Price(d("100000"), d("10"), d("10"), true)
	assert.True(t, d("99000").Equal(due), due.String())
	assert.True(t, d("9000").Equal(tip), tip.String())

	due, tip = Price(d("100000"), d("10"), d("10"), false)
	assert.True(t, d("90000").Equal(due))
	assert.True(t, tip.IsZero())

	due, _ = Price(d("23700"), decimal.Zero, decimal.Zero, false)
	assert.True(t, d("23700").Equal(due))
}

func TestService_CreateSplitRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	record, err := svc.Create(ctx, CreateRequest{
		OrderID:    "42",
		Discount:   d("10"),
		TipPercent: d("10"),
		TipEnabled: boolPtr(true),
		Portions: []PortionInput{
			{Base: d("50000"), FullName: "Ana"},
			{Base: d("30000"), FullName: "Luis"},
		},
	})
	require.NoError(t, err)
	assert.True(t, record.Split)
	require.Len(t, record.Portions, 2)
	assert.True(t, d("49500").Equal(record.Portions[0].AmountDue))
	assert.True(t, d("45000").Equal(record.Portions[0].Subtotal()))

	stored, err := svc.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Luis", stored.Portions[1].FullName)
}

func TestService_CreatePerSplitTips(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Now())
	tip := d("15")

	record, err := svc.Create(ctx, CreateRequest{
		OrderID:    "88",
		TipPercent: d("10"),
		Portions: []PortionInput{
			{Base: d("10000")},
			{Base: d("10000"), TipEnabled: boolPtr(false)},
			{Base: d("10000"), TipPercent: &tip},
		},
	})
	require.NoError(t, err)
	require.Len(t, record.Portions, 3)

	// tips default to on
	assert.True(t, d("11000").Equal(record.Portions[0].AmountDue), record.Portions[0].AmountDue.String())
	assert.True(t, d("1000").Equal(record.Portions[0].Tip))
	assert.True(t, d("10000").Equal(record.Portions[1].AmountDue))
	assert.True(t, record.Portions[1].Tip.IsZero())
	assert.True(t, d("11500").Equal(record.Portions[2].AmountDue))
}

func TestHandler_PutPerSplitTipsFromJSON(t *testing.T) {
	svc, _ := newTestService(time.Now())
	r := newTestRouter(svc)

	body := `{"propina_porcentaje":10,"pagos":[{"base":10000,"propina_porcentaje":10},{"base":10000,"propina_activa":false}]}`
	req := httptest.NewRequest(http.MethodPut, "/cash/orders/90/backup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	record, err := svc.Get(context.Background(), "90")
	require.NoError(t, err)
	assert.True(t, d("11000").Equal(record.Portions[0].AmountDue))
	assert.True(t, d("10000").Equal(record.Portions[1].AmountDue))
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Now())

	_, err := svc.Create(ctx, CreateRequest{OrderID: " ", Portions: []PortionInput{{Base: d("1")}}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = svc.Create(ctx, CreateRequest{OrderID: "1"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = svc.Create(ctx, CreateRequest{OrderID: "1", Discount: d("120"), Portions: []PortionInput{{Base: d("1")}}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	negative := d("-5")
	_, err = svc.Create(ctx, CreateRequest{OrderID: "1", Portions: []PortionInput{{Base: d("1"), TipPercent: &negative}}})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestService_MarkPaidLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Now())

	_, err := svc.Create(ctx, CreateRequest{
		OrderID:  "7",
		Portions: []PortionInput{{Base: d("1000")}, {Base: d("2000")}},
	})
	require.NoError(t, err)

	settled, err := svc.MarkPaid(ctx, "7", 1)
	require.NoError(t, err)
	assert.False(t, settled)

	_, err = svc.MarkPaid(ctx, "7", 1)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = svc.MarkPaid(ctx, "7", 5)
	assert.ErrorIs(t, err, ErrPortionNotFound)

	settled, err = svc.MarkPaid(ctx, "7", 0)
	require.NoError(t, err)
	assert.True(t, settled)

	_, err = svc.Get(ctx, "7")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.MarkPaid(ctx, "7", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SweepStale(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(start)

	_, err := svc.Create(ctx, CreateRequest{OrderID: "old", Portions: []PortionInput{{Base: d("1")}}})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(10 * time.Hour) }
	_, err = svc.Create(ctx, CreateRequest{OrderID: "fresh", Portions: []PortionInput{{Base: d("1")}}})
	require.NoError(t, err)

	n, err := svc.SweepStale(ctx, 6*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Save(ctx, &Record{OrderID: "1", Portions: []Portion{{AmountDue: d("5")}}}))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	got.Portions[0].Paid = true

	again, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, again.Portions[0].Paid)
}

// --------------------------------------------------
// Handler
// --------------------------------------------------

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.PUT("/cash/orders/:orderID/backup", h.Put)
	r.GET("/cash/orders/:orderID/backup", h.Get)
	r.DELETE("/cash/orders/:orderID/backup", h.Delete)
	return r
}

func TestHandler_PutGetDelete(t *testing.T) {
	svc, _ := newTestService(time.Now())
	r := newTestRouter(svc)

	body := `{"descuento":"0","pagos":[{"base":23700,"nombre_completo":"Ana"}]}`
	req := httptest.NewRequest(http.MethodPut, "/cash/orders/55/backup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cash/orders/55/backup", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "55", got.OrderID)
	assert.True(t, d("23700").Equal(got.Portions[0].AmountDue))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cash/orders/55/backup", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cash/orders/55/backup", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PutRejectsBadPayload(t *testing.T) {
	svc, _ := newTestService(time.Now())
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/cash/orders/55/backup", strings.NewReader(`{"pagos":[]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package payment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gastropos/internal/backup"
	"gastropos/internal/billing"
	"gastropos/internal/cash"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Messages the POS shows verbatim.
const (
	msgInsufficient = "El dinero entregado no es suficiente."
	msgPaymentError = "Error al pagar el pedido"
)

type Handler struct {
	service *Service
	denoms  *cash.Denominations
}

func NewHandler(service *Service, denoms *cash.Denominations) *Handler {
	return &Handler{service: service, denoms: denoms}
}

// POST /cash/orders/:orderID/splits/:split/session
func (h *Handler) Open(c *gin.Context) {
	orderID, split, ok := orderParams(c)
	if !ok {
		return
	}

	screen, err := h.service.Open(c.Request.Context(), orderID, split)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, screen.View())
}

// GET /cash/orders/:orderID/splits/:split/session
func (h *Handler) Get(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

// PUT /cash/orders/:orderID/splits/:split/session/declare
func (h *Handler) SetDeclaring(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}

	var req struct {
		Declaring *bool `json:"declaring"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Declaring == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "declaring required"})
		return
	}

	screen.SetDeclaring(*req.Declaring)
	c.JSON(http.StatusOK, screen.View())
}

// PUT /cash/orders/:orderID/splits/:split/session/counts/:value
func (h *Handler) SetCount(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	value, ok := valueParam(c)
	if !ok {
		return
	}

	var req struct {
		Count any `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := screen.SetCount(value, rawCount(req.Count)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

// POST /cash/orders/:orderID/splits/:split/session/counts/:value/increment
func (h *Handler) Increment(c *gin.Context) {
	h.step(c, (*Screen).Increment)
}

// POST /cash/orders/:orderID/splits/:split/session/counts/:value/decrement
func (h *Handler) Decrement(c *gin.Context) {
	h.step(c, (*Screen).Decrement)
}

func (h *Handler) step(c *gin.Context, apply func(*Screen, cash.Amount) error) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	value, ok := valueParam(c)
	if !ok {
		return
	}

	if err := apply(screen, value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

// POST /cash/orders/:orderID/splits/:split/session/submit
func (h *Handler) Submit(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}

	var opt Optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opt); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}

	ctx := billing.WithToken(c.Request.Context(), bearerToken(c))
	result, err := h.service.Submit(ctx, screen, opt, c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ----- stateless -----

// POST /cash/quote
func (h *Handler) Quote(c *gin.Context) {
	var req struct {
		AmountDue decimal.Decimal  `json:"amount_due"`
		Declaring *bool            `json:"declaring"`
		Counts    map[string]int64 `json:"counts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.AmountDue.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_due must not be negative"})
		return
	}

	declaring := req.Declaring == nil || *req.Declaring
	counts := cash.NewCounts(h.denoms)
	for raw, n := range req.Counts {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid denomination " + raw})
			return
		}
		if err := counts.SetCount(cash.Amount(value), strconv.FormatInt(n, 10)); err != nil {
			writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, cash.Compute(cash.OrderContext{}, req.AmountDue, declaring, counts.Map(), h.denoms))
}

// GET /cash/denominations
func (h *Handler) Denominations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"denominations": h.denoms.All(),
		"canonical":     h.denoms.IsCanonical(),
	})
}

// ----- helpers -----

func (h *Handler) screen(c *gin.Context) (*Screen, bool) {
	orderID, split, ok := orderParams(c)
	if !ok {
		return nil, false
	}

	screen, err := h.service.Registry().Get(orderID, split)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return screen, true
}

func orderParams(c *gin.Context) (string, int, bool) {
	orderID := strings.TrimSpace(c.Param("orderID"))
	split, err := strconv.Atoi(c.Param("split"))
	if orderID == "" || err != nil || split < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order or split"})
		return "", 0, false
	}
	return orderID, split, true
}

func valueParam(c *gin.Context) (cash.Amount, bool) {
	value, err := strconv.ParseInt(c.Param("value"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid denomination"})
		return 0, false
	}
	return cash.Amount(value), true
}

// rawCount accepts the count as typed (string) or as a JSON number.
func rawCount(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func writeError(c *gin.Context, err error) {
	var status *billing.StatusError

	switch {
	case errors.Is(err, ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgInsufficient})
	case errors.Is(err, ErrSubmitting), errors.Is(err, ErrAlreadySubmitted), errors.Is(err, backup.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaymentInfoNotFound), errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cash.ErrUnknownDenomination):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaymentFailed):
		msg := msgPaymentError
		if errors.As(err, &status) && status.Message != "" {
			msg = status.Message
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

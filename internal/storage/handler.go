package storage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store InvoiceStore
}

func NewHandler(store InvoiceStore) *Handler {
	return &Handler{store: store}
}

// GET /cash/invoices/:invoiceID/pdf
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("invoiceID")

	doc, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrEmptyInvoice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load invoice document"})
		}
		return
	}

	c.Header("Content-Disposition", `inline; filename="factura-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// SharedReader is implemented by stores that serve their own share links.
type SharedReader interface {
	GetShared(ctx context.Context, key string) (invoiceID string, pdf []byte, err error)
}

// GET /public/invoices/:key
func (h *Handler) Shared(c *gin.Context) {
	reader, ok := h.store.(SharedReader)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
		return
	}

	id, doc, err := reader.GetShared(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
		return
	}

	c.Header("Content-Disposition", `inline; filename="factura-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// DELETE /cash/invoices/:invoiceID/pdf
func (h *Handler) Release(c *gin.Context) {
	if err := h.store.Release(c.Request.Context(), c.Param("invoiceID")); err != nil {
		if errors.Is(err, ErrEmptyInvoice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to release invoice document"})
		return
	}

	c.Status(http.StatusNoContent)
}

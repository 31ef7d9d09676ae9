package backup

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PUT /cash/orders/:orderID/backup
func (h *Handler) Put(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.OrderID = c.Param("orderID")

	record, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store backup record"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GET /cash/orders/:orderID/backup
func (h *Handler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load backup record"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DELETE /cash/orders/:orderID/backup
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("orderID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear backup record"})
		return
	}

	c.Status(http.StatusNoContent)
}

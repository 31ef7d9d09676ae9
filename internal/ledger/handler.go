package ledger

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GET /cash/reports/summary
func (h *Handler) Summary(c *gin.Context) {
	sum, ok := h.summary(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sum)
}

// GET /cash/reports/summary.xlsx
func (h *Handler) Export(c *gin.Context) {
	sum, ok := h.summary(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := Export(sum, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
		return
	}

	name := "cierre-" + sum.From.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) summary(c *gin.Context) (*Summary, bool) {
	from, to, err := ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	sum, err := h.service.Summary(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return nil, false
	}
	return sum, true
}

// ParseRange accepts RFC3339 timestamps or plain dates. A plain "to" date
// covers that whole day.
func ParseRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("from and to required")
	}

	start, _, err := parseBound(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, dateOnly, err := parseBound(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func parseBound(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return time.Time{}, false, errors.New("invalid date: " + v)
	}
	return t, true, nil
}

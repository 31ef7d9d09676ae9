package router

import (
	"net/http"
	"time"

	"gastropos/internal/auth"
	"gastropos/internal/backup"
	"gastropos/internal/ledger"
	"gastropos/internal/middleware"
	"gastropos/internal/observability"
	"gastropos/internal/payment"
	"gastropos/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups everything mounted under /cash.
type Handlers struct {
	Backup  *backup.Handler
	Payment *payment.Handler
	Storage *storage.Handler
	Ledger  *ledger.Handler
}

type Options struct {
	Logger         *zap.Logger
	JWTSecret      []byte
	AllowedOrigins []string
}

func NewRouter(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		observability.Recovery(opts.Logger),
		observability.RequestLogger(opts.Logger),
	)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Share links for the invoice viewer; the key is a random uuid.
	r.GET("/public/invoices/:key", h.Storage.Shared)

	// ───────────────────────── CASH ROUTES ─────────────────────────
	cashGroup := r.Group("/cash")
	cashGroup.Use(
		middleware.AuthMiddleware(opts.JWTSecret),
		middleware.RequireRole(auth.RoleCashier, auth.RoleAdmin),
	)
	{
		cashGroup.GET("/denominations", h.Payment.Denominations)
		cashGroup.POST("/quote", h.Payment.Quote)

		orders := cashGroup.Group("/orders/:orderID")
		orders.PUT("/backup", h.Backup.Put)
		orders.GET("/backup", h.Backup.Get)
		orders.DELETE("/backup", h.Backup.Delete)

		session := orders.Group("/splits/:split/session")
		session.POST("", h.Payment.Open)
		session.GET("", h.Payment.Get)
		session.PUT("/declare", h.Payment.SetDeclaring)
		session.PUT("/counts/:value", h.Payment.SetCount)
		session.POST("/counts/:value/increment", h.Payment.Increment)
		session.POST("/counts/:value/decrement", h.Payment.Decrement)
		session.POST("/submit", h.Payment.Submit)

		cashGroup.GET("/invoices/:invoiceID/pdf", h.Storage.Get)
		cashGroup.DELETE("/invoices/:invoiceID/pdf", h.Storage.Release)

		// Cierre de caja
		cashGroup.GET("/reports/summary", h.Ledger.Summary)
		cashGroup.GET("/reports/summary.xlsx", h.Ledger.Export)
	}

	return r
}

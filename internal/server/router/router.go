package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/server/handlers"
)

// Handlers groups the HTTP handler adapters mounted by New.
type Handlers struct {
	Rentals     *handlers.RentalsHandler
	Periods     *handlers.PeriodsHandler
	Documents   *handlers.DocumentsHandler
	Occurrences *handlers.OccurrencesHandler
	Backup      *handlers.BackupHandler
	Assistant   *handlers.AssistantHandler
	Webhook     *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/webhook", h.Webhook.Verify)
	r.POST("/webhook", h.Webhook.Receive)
	r.POST("/send-message", h.Webhook.SendMessage)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/owners", h.Rentals.ListOwners)
	api.POST("/owners", h.Rentals.CreateOwner)
	api.PUT("/owners/:id", h.Rentals.UpdateOwner)
	api.DELETE("/owners/:id", h.Rentals.DeleteOwner)

	rentals := api.Group("/rentals")
	rentals.GET("", h.Rentals.ListRentals)
	rentals.POST("", h.Rentals.CreateRental)
	rentals.GET("/:id", h.Rentals.GetRental)
	rentals.PUT("/:id", h.Rentals.UpdateRental)
	rentals.DELETE("/:id", h.Rentals.DeleteRental)
	rentals.PUT("/:id/items/:side", h.Rentals.SetItems)
	rentals.POST("/:id/paid", h.Rentals.MarkPaid)
	rentals.POST("/:id/transferred", h.Rentals.MarkTransferred)
	rentals.POST("/:id/late-fee", h.Rentals.ApplyLateFee)
	rentals.POST("/:id/adjustment", h.Rentals.ApplyRentAdjustment)
	rentals.GET("/:id/receipt", h.Documents.Receipt)

	periods := api.Group("/periods")
	periods.GET("", h.Periods.List)
	periods.DELETE("/:year", h.Periods.DeleteYear)
	periods.GET("/:year/totals", h.Periods.YearTotals)
	periods.GET("/:year/chart.png", h.Periods.YearChart)
	periods.POST("/:year/:month/next", h.Periods.OpenNext)
	periods.DELETE("/:year/:month", h.Periods.DeletePeriod)
	periods.GET("/:year/:month/dashboard", h.Periods.Dashboard)
	periods.GET("/:year/:month/ledger", h.Periods.Ledger)
	periods.GET("/:year/:month/status", h.Periods.Status)
	periods.GET("/:year/:month/adjustments", h.Periods.Adjustments)
	periods.POST("/:year/:month/statements/:ownerId", h.Documents.Statement)
	periods.POST("/:year/:month/repasse", h.Documents.Repasse)

	api.GET("/occurrences", h.Occurrences.List)
	api.POST("/occurrences", h.Occurrences.Create)
	api.PUT("/occurrences/:id/status", h.Occurrences.UpdateStatus)

	api.GET("/backup", h.Backup.Export)
	api.POST("/backup", h.Backup.Import)
	api.POST("/backup/drive/push", h.Backup.PushToDrive)
	api.POST("/backup/drive/pull", h.Backup.PullFromDrive)
	api.GET("/settings/pix", h.Backup.GetPixConfig)
	api.PUT("/settings/pix", h.Backup.SavePixConfig)

	api.POST("/assistant", h.Assistant.Ask)
	api.GET("/whatsapp/log", h.Webhook.Log)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

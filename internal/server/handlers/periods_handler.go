package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/service/rentals"
	"github.com/jobh/imoveis/internal/service/reporting"
)

// PeriodsHandler exposes month management and the period reports.
type PeriodsHandler struct {
	rentals   *rentals.Service
	reporting *reporting.Service
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewPeriodsHandler constructs the HTTP handler adapter.
func NewPeriodsHandler(rentalsSvc *rentals.Service, reportingSvc *reporting.Service, loc *time.Location, logger *zap.Logger) *PeriodsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PeriodsHandler{rentals: rentalsSvc, reporting: reportingSvc, loc: loc, logger: logger, now: time.Now}
}

// List returns the months holding rentals, oldest first.
func (h *PeriodsHandler) List(c *gin.Context) {
	periods, err := h.rentals.Periods(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

// OpenNext copies the period's rentals into the following month.
func (h *PeriodsHandler) OpenNext(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	next, created, err := h.rentals.OpenNextPeriod(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"period": next, "created": created})
}

// DeletePeriod removes every rental of the month.
func (h *PeriodsHandler) DeletePeriod(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	deleted, err := h.rentals.DeletePeriod(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// DeleteYear removes every rental of the year.
func (h *PeriodsHandler) DeleteYear(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	deleted, err := h.rentals.DeleteYear(c.Request.Context(), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Dashboard returns the paid, admin fee and transferred totals of the period.
func (h *PeriodsHandler) Dashboard(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dash, err := h.reporting.Dashboard(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Ledger returns each rental of the period with its breakdown.
func (h *PeriodsHandler) Ledger(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.reporting.Ledger(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Status classifies the open rentals of the period as of today.
func (h *PeriodsHandler) Status(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status, err := h.rentals.Status(c.Request.Context(), p, h.now().In(h.loc))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Adjustments lists the rentals due for their yearly rent adjustment.
func (h *PeriodsHandler) Adjustments(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	due, err := h.rentals.PendingAdjustments(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

// YearTotals returns the dashboard totals of each month of the year.
func (h *PeriodsHandler) YearTotals(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	totals, err := h.reporting.YearTotals(c.Request.Context(), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// YearChart serves the monthly receipts chart as PNG.
func (h *PeriodsHandler) YearChart(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	png, err := h.reporting.YearChart(c.Request.Context(), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

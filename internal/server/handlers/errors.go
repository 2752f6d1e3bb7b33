package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/service/assistant"
	"github.com/jobh/imoveis/internal/service/backup"
	"github.com/jobh/imoveis/internal/service/occurrences"
	"github.com/jobh/imoveis/internal/service/rentals"
	"github.com/jobh/imoveis/internal/service/reporting"
	"github.com/jobh/imoveis/internal/service/whatsapp"
)

// errInvalidRequest marks malformed paths, queries and bodies.
var errInvalidRequest = errors.New("invalid request")

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, rentals.ErrInvalidOwner),
		errors.Is(err, rentals.ErrInvalidRental),
		errors.Is(err, occurrences.ErrInvalidOccurrence),
		errors.Is(err, reporting.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, rentals.ErrEmptyPeriod),
		errors.Is(err, reporting.ErrNoRentals):
		return http.StatusNotFound
	case errors.Is(err, rentals.ErrPeriodExists),
		errors.Is(err, rentals.ErrLastPeriod):
		return http.StatusConflict
	case errors.Is(err, reporting.ErrSheetsDisabled),
		errors.Is(err, backup.ErrDriveDisabled),
		errors.Is(err, assistant.ErrDisabled),
		errors.Is(err, whatsapp.ErrMessagingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error as JSON. Server errors are logged and not echoed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// periodParam reads the :year and :month path parameters. Months may be names or 1-12.
func periodParam(c *gin.Context) (models.Period, error) {
	year, err := yearParam(c)
	if err != nil {
		return models.Period{}, err
	}
	p, err := models.ParsePeriod(c.Param("month"), year)
	if err != nil {
		return models.Period{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return p, nil
}

func yearParam(c *gin.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: invalid year %q", errInvalidRequest, c.Param("year"))
	}
	return year, nil
}

func errInvalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

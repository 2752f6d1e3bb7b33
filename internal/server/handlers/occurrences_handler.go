package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/occurrences"
)

// OccurrencesHandler exposes service tickets.
type OccurrencesHandler struct {
	svc    *occurrences.Service
	logger *zap.Logger
}

// NewOccurrencesHandler constructs the HTTP handler adapter.
func NewOccurrencesHandler(svc *occurrences.Service, logger *zap.Logger) *OccurrencesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrencesHandler{svc: svc, logger: logger}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns the occurrences, newest first.
func (h *OccurrencesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create opens a new occurrence.
func (h *OccurrencesHandler) Create(c *gin.Context) {
	var occ models.Occurrence
	if err := bindJSON(c, &occ); err != nil {
		respondError(c, h.logger, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), occ)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateStatus moves an occurrence to another status.
func (h *OccurrencesHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

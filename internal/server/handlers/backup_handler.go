package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/backup"
	"github.com/jobh/imoveis/internal/service/reporting"
)

// BackupHandler exposes state export, import and the Drive sync, plus the PIX settings.
type BackupHandler struct {
	backup    *backup.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewBackupHandler constructs the HTTP handler adapter.
func NewBackupHandler(backupSvc *backup.Service, reportingSvc *reporting.Service, logger *zap.Logger) *BackupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupHandler{backup: backupSvc, reporting: reportingSvc, logger: logger}
}

// Export downloads the whole state as a JSON snapshot.
func (h *BackupHandler) Export(c *gin.Context) {
	snapshot, err := h.backup.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.JSON(http.StatusOK, snapshot)
}

// Import replaces the whole state with the posted snapshot.
func (h *BackupHandler) Import(c *gin.Context) {
	var snapshot models.Snapshot
	if err := bindJSON(c, &snapshot); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.backup.Import(c.Request.Context(), snapshot); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owners":      len(snapshot.Owners),
		"rentals":     len(snapshot.Rentals),
		"occurrences": len(snapshot.Occurrences),
	})
}

// PushToDrive uploads the current state to Google Drive.
func (h *BackupHandler) PushToDrive(c *gin.Context) {
	id, err := h.backup.PushToDrive(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileId": id})
}

// PullFromDrive replaces the state with the Drive copy.
func (h *BackupHandler) PullFromDrive(c *gin.Context) {
	snapshot, err := h.backup.PullFromDrive(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owners":      len(snapshot.Owners),
		"rentals":     len(snapshot.Rentals),
		"occurrences": len(snapshot.Occurrences),
		"lastUpdated": snapshot.LastUpdated,
	})
}

// GetPixConfig returns the stored PIX settings, or the company defaults.
func (h *BackupHandler) GetPixConfig(c *gin.Context) {
	cfg, err := h.reporting.PixConfig(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SavePixConfig validates and stores the PIX settings.
func (h *BackupHandler) SavePixConfig(c *gin.Context) {
	var cfg models.PixConfig
	if err := bindJSON(c, &cfg); err != nil {
		respondError(c, h.logger, err)
		return
	}
	saved, err := h.reporting.SavePixConfig(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

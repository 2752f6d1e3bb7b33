package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/assistant"
	"github.com/jobh/imoveis/internal/service/whatsapp"
)

// AssistantHandler answers back-office questions.
type AssistantHandler struct {
	svc       *assistant.Service
	messaging whatsapp.MessagingService
	logger    *zap.Logger
}

// NewAssistantHandler constructs the HTTP handler adapter. messaging provides the recent
// WhatsApp log and may be nil.
func NewAssistantHandler(svc *assistant.Service, messaging whatsapp.MessagingService, logger *zap.Logger) *AssistantHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantHandler{svc: svc, messaging: messaging, logger: logger}
}

// Ask forwards the query with the recent WhatsApp log and returns the reply and the
// actions left for the client.
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req models.AssistantRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.messaging != nil {
		req.Recent = h.messaging.RecentMessages()
	}

	reply, err := h.svc.Ask(c.Request.Context(), req)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			h.logger.Error("assistant failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "assistant unavailable"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

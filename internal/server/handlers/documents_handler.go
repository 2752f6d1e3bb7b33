package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/service/reporting"
)

const htmlContentType = "text/html; charset=utf-8"

// DocumentsHandler renders receipts, owner statements and transfer lists.
type DocumentsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewDocumentsHandler constructs the HTTP handler adapter.
func NewDocumentsHandler(svc *reporting.Service, logger *zap.Logger) *DocumentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentsHandler{svc: svc, logger: logger}
}

type statementRequest struct {
	RentalIDs []string `json:"rentalIds"`
	Notes     string   `json:"notes"`
}

type repasseRequest struct {
	RentalIDs []string `json:"rentalIds"`
}

// Receipt serves the tenant receipt of a rental.
func (h *DocumentsHandler) Receipt(c *gin.Context) {
	receipt, err := h.svc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.html(c, func(buf *bytes.Buffer) error { return reporting.RenderReceipt(buf, receipt) })
}

// Statement serves an owner statement. The optional body narrows the rentals and adds notes.
func (h *DocumentsHandler) Statement(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req statementRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	st, err := h.svc.OwnerStatement(c.Request.Context(), reporting.StatementRequest{
		OwnerID:   c.Param("ownerId"),
		Period:    p,
		RentalIDs: req.RentalIDs,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.html(c, func(buf *bytes.Buffer) error { return reporting.RenderStatement(buf, st) })
}

// Repasse serves the transfer list; with ?export=sheets it is also written to the
// spreadsheet.
func (h *DocumentsHandler) Repasse(c *gin.Context) {
	p, err := periodParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req repasseRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	list, err := h.svc.RepasseList(c.Request.Context(), p, req.RentalIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if c.Query("export") == "sheets" {
		if err := h.svc.ExportRepasse(c.Request.Context(), list); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	h.html(c, func(buf *bytes.Buffer) error { return reporting.RenderRepasse(buf, list) })
}

// html renders the whole page before writing the response.
func (h *DocumentsHandler) html(c *gin.Context, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/rentals"
)

// RentalsHandler exposes owner and rental management.
type RentalsHandler struct {
	svc    *rentals.Service
	logger *zap.Logger
}

// NewRentalsHandler constructs the HTTP handler adapter.
func NewRentalsHandler(svc *rentals.Service, logger *zap.Logger) *RentalsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalsHandler{svc: svc, logger: logger}
}

// rentalResponse adds the computed figures to a rental.
type rentalResponse struct {
	models.Rental
	Breakdown finance.Breakdown `json:"breakdown"`
}

type flagRequest struct {
	Value *bool `json:"value"`
}

// ListOwners returns every owner ordered by name.
func (h *RentalsHandler) ListOwners(c *gin.Context) {
	owners, err := h.svc.ListOwners(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, owners)
}

// CreateOwner validates and stores a new owner.
func (h *RentalsHandler) CreateOwner(c *gin.Context) {
	var owner models.Owner
	if err := bindJSON(c, &owner); err != nil {
		respondError(c, h.logger, err)
		return
	}
	created, err := h.svc.CreateOwner(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateOwner replaces an owner and renames it on its rentals.
func (h *RentalsHandler) UpdateOwner(c *gin.Context) {
	var owner models.Owner
	if err := bindJSON(c, &owner); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.UpdateOwner(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteOwner removes an owner; its rentals are kept.
func (h *RentalsHandler) DeleteOwner(c *gin.Context) {
	if err := h.svc.DeleteOwner(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRentals filters by the optional month, year and ownerId query parameters.
func (h *RentalsHandler) ListRentals(c *gin.Context) {
	filter := models.RentalFilter{OwnerID: c.Query("ownerId")}
	if month := c.Query("month"); month != "" {
		idx := models.MonthIndex(month)
		if idx < 0 {
			respondError(c, h.logger, errInvalidRequestf("unknown month %q", month))
			return
		}
		filter.Month = models.Months[idx]
	}
	if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			respondError(c, h.logger, errInvalidRequestf("invalid year %q", year))
			return
		}
		filter.Year = y
	}

	list, err := h.svc.ListRentals(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateRental stores a new rental and returns it with its breakdown.
func (h *RentalsHandler) CreateRental(c *gin.Context) {
	var rental models.Rental
	if err := bindJSON(c, &rental); err != nil {
		respondError(c, h.logger, err)
		return
	}
	created, err := h.svc.CreateRental(c.Request.Context(), rental)
	h.respondRental(c, http.StatusCreated, created, err)
}

// GetRental returns the rental with its computed breakdown.
func (h *RentalsHandler) GetRental(c *gin.Context) {
	rental, err := h.svc.GetRental(c.Request.Context(), c.Param("id"))
	h.respondRental(c, http.StatusOK, rental, err)
}

// UpdateRental replaces a rental and returns it with its breakdown.
func (h *RentalsHandler) UpdateRental(c *gin.Context) {
	var rental models.Rental
	if err := bindJSON(c, &rental); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.UpdateRental(c.Request.Context(), c.Param("id"), rental)
	h.respondRental(c, http.StatusOK, updated, err)
}

// DeleteRental removes one rental.
func (h *RentalsHandler) DeleteRental(c *gin.Context) {
	if err := h.svc.DeleteRental(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetItems replaces the tenant or owner items; the body is the full item list.
func (h *RentalsHandler) SetItems(c *gin.Context) {
	var items []models.LineItem
	if err := bindJSON(c, &items); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.SetItems(c.Request.Context(), c.Param("id"), models.ItemSide(c.Param("side")), items)
	h.respondRental(c, http.StatusOK, updated, err)
}

// MarkPaid sets the paid flag. An empty body means true.
func (h *RentalsHandler) MarkPaid(c *gin.Context) {
	value, err := flagValue(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), value)
	h.respondRental(c, http.StatusOK, updated, err)
}

// MarkTransferred sets the transferred flag. An empty body means true.
func (h *RentalsHandler) MarkTransferred(c *gin.Context) {
	value, err := flagValue(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.MarkTransferred(c.Request.Context(), c.Param("id"), value)
	h.respondRental(c, http.StatusOK, updated, err)
}

// ApplyLateFee adds the 10% fine on the selected amounts.
func (h *RentalsHandler) ApplyLateFee(c *gin.Context) {
	var sel rentals.LateFeeSelection
	if err := bindJSON(c, &sel); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.ApplyLateFee(c.Request.Context(), c.Param("id"), sel)
	h.respondRental(c, http.StatusOK, updated, err)
}

// ApplyRentAdjustment raises the rent by a percentage or a fixed amount.
func (h *RentalsHandler) ApplyRentAdjustment(c *gin.Context) {
	var adj rentals.RentAdjustment
	if err := bindJSON(c, &adj); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updated, err := h.svc.ApplyRentAdjustment(c.Request.Context(), c.Param("id"), adj)
	h.respondRental(c, http.StatusOK, updated, err)
}

func (h *RentalsHandler) respondRental(c *gin.Context, status int, rental models.Rental, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	owners, err := h.svc.ListOwners(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, rentalResponse{Rental: rental, Breakdown: finance.ComputeFor(rental, owners)})
}

func flagValue(c *gin.Context) (bool, error) {
	if c.Request.ContentLength == 0 {
		return true, nil
	}
	var req flagRequest
	if err := bindJSON(c, &req); err != nil {
		return false, err
	}
	if req.Value == nil {
		return true, nil
	}
	return *req.Value, nil
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	reqdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/request"
	resdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/response"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/httperr"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/middleware"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/commands"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HoldHandler struct {
	reservationCommands commands.ReservationCommands
	holdQueries         queries.HoldQueries
	metrics             *metrics.Metrics
}

func NewHoldHandler(reservationCommands commands.ReservationCommands, holdQueries queries.HoldQueries, m *metrics.Metrics) *HoldHandler {
	return &HoldHandler{
		reservationCommands: reservationCommands,
		holdQueries:         holdQueries,
		metrics:             m,
	}
}

// @Summary Reserve a ticket
// @Description Place a hold on one ticket of an inventory. Re-reserving while a live hold exists returns that hold.
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateHoldRequest true "Hold request"
// @Success 201 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /holds [post]
func (h *HoldHandler) CreateHold(c *gin.Context) {
	holderID, ok := middleware.GetHolderID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	var req reqdto.CreateHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format")
		return
	}

	view, err := h.reservationCommands.Reserve(c.Request.Context(), req.InventoryID, holderID)
	if err != nil {
		h.metrics.ReservationsTotal.WithLabelValues("reserve", "failure").Inc()
		switch {
		case errors.Is(err, errs.ErrInventoryNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Inventory not found")
		case errors.Is(err, errs.ErrInventoryExhausted):
			httperr.AbortWithError(c, http.StatusConflict, err, "Inventory is sold out")
		case errors.Is(err, errs.ErrStoreContention):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Store contention, please retry")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	h.metrics.ReservationsTotal.WithLabelValues("reserve", "success").Inc()
	h.respondHold(c, http.StatusCreated, view)
}

// @Summary Purchase a hold
// @Description Convert a reserved hold into a purchase before it expires.
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /holds/{id}/purchase [post]
func (h *HoldHandler) PurchaseHold(c *gin.Context) {
	h.finalizeHold(c, "purchase", h.reservationCommands.Purchase)
}

// @Summary Cancel a hold
// @Description Cancel a reserved hold and return its ticket to the pool.
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /holds/{id}/cancel [post]
func (h *HoldHandler) CancelHold(c *gin.Context) {
	h.finalizeHold(c, "cancel", h.reservationCommands.Cancel)
}

// @Summary Get hold
// @Description Get one of the current holder's holds by ID
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /holds/{id} [get]
func (h *HoldHandler) GetHold(c *gin.Context) {
	holderID, ok := middleware.GetHolderID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid hold ID format")
		return
	}

	view, err := h.holdQueries.GetByID(c.Request.Context(), holderID, id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrHoldNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Hold not found")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	h.respondHold(c, http.StatusOK, view)
}

// @Summary List holds
// @Description List all holds of the current holder, newest first
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.HoldResponse
// @Failure 401 {object} map[string]string
// @Router /holds [get]
func (h *HoldHandler) ListHolds(c *gin.Context) {
	holderID, ok := middleware.GetHolderID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	views, err := h.holdQueries.ListByHolder(c.Request.Context(), holderID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	resp, err := resdto.FromHoldViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// finalizeHold is the shared path for purchase and cancel: both address a
// hold by ID, both require ownership, and both map errors the same way.
func (h *HoldHandler) finalizeHold(
	c *gin.Context,
	operation string,
	finalize func(ctx context.Context, holdID, holderID uuid.UUID) (*queries.HoldView, error),
) {
	holderID, ok := middleware.GetHolderID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	holdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid hold ID format")
		return
	}

	view, err := finalize(c.Request.Context(), holdID, holderID)
	if err != nil {
		h.metrics.ReservationsTotal.WithLabelValues(operation, "failure").Inc()
		h.writeFinalizeError(c, err)
		return
	}

	h.metrics.ReservationsTotal.WithLabelValues(operation, "success").Inc()
	h.respondHold(c, http.StatusOK, view)
}

func (h *HoldHandler) writeFinalizeError(c *gin.Context, err error) {
	var transitionErr *hold.InvalidTransitionError
	switch {
	// A holder must not learn that a foreign hold exists, so ownership
	// failures answer exactly like missing holds.
	case errors.Is(err, errs.ErrHoldNotFound), errors.Is(err, errs.ErrUnauthorizedHolder):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Hold not found")
	case errors.Is(err, errs.ErrHoldExpired):
		httperr.AbortWithError(c, http.StatusGone, err, "Hold has expired")
	case errors.As(err, &transitionErr):
		httperr.AbortWithError(c, http.StatusConflict, err, fmt.Sprintf("Hold is already %s", transitionErr.From))
	case errors.Is(err, errs.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Hold is already finalized")
	case errors.Is(err, errs.ErrStoreContention):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Store contention, please retry")
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
	}
}

func (h *HoldHandler) respondHold(c *gin.Context, status int, view *queries.HoldView) {
	resp, err := resdto.FromHoldView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}
	c.JSON(status, resp)
}

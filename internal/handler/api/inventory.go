package api

import (
	"errors"
	"net/http"

	resdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/response"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/httperr"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	reservationCommands commands.ReservationCommands
}

func NewInventoryHandler(reservationCommands commands.ReservationCommands) *InventoryHandler {
	return &InventoryHandler{
		reservationCommands: reservationCommands,
	}
}

// @Summary Release expired holds
// @Description Return the capacity of every lapsed hold on an inventory to the pool
// @Tags inventories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inventory ID"
// @Success 200 {object} resdto.ReleaseExpiredResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /inventories/{id}/release-expired [post]
func (h *InventoryHandler) ReleaseExpired(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid inventory ID format")
		return
	}

	released, err := h.reservationCommands.ReleaseExpired(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInventoryNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Inventory not found")
		case errors.Is(err, errs.ErrStoreContention):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Store contention, please retry")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.ReleaseExpiredResponse{
		InventoryID: id,
		Released:    released,
	})
}

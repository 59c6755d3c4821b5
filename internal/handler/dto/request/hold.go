package request

import (
	"github.com/google/uuid"
)

type CreateHoldRequest struct {
	InventoryID uuid.UUID `json:"inventory_id" binding:"required"`
}

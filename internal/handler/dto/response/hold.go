package response

import (
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type HoldResponse struct {
	ID          uuid.UUID  `json:"id"`
	InventoryID uuid.UUID  `json:"inventoryId"`
	HolderID    uuid.UUID  `json:"holderId"`
	State       string     `json:"state"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ReleaseExpiredResponse struct {
	InventoryID uuid.UUID `json:"inventoryId"`
	Released    int       `json:"released"`
}

func FromHoldView(view *queries.HoldView) (*HoldResponse, error) {
	var resp HoldResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, errs.Wrap(err, "failed to map hold view")
	}
	return &resp, nil
}

func FromHoldViews(views []*queries.HoldView) ([]*HoldResponse, error) {
	resp := make([]*HoldResponse, len(views))
	for i, v := range views {
		r, err := FromHoldView(v)
		if err != nil {
			return nil, err
		}
		resp[i] = r
	}
	return resp, nil
}

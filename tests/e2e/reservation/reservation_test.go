//go:build e2e

package reservation_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	resdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/response"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/authtest"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/dbtest"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/httptest"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReservationSuite struct {
	e2e.SharedSuite
}

func TestReservationSuite(t *testing.T) {
	suite.Run(t, new(ReservationSuite))
}

func (s *ReservationSuite) holderToken(holderID uuid.UUID) string {
	return authtest.IssueHolderToken(s.T(), s.Config, holderID)
}

func (s *ReservationSuite) reserve(token string, inventoryID uuid.UUID) (*resdto.HoldResponse, int) {
	body := map[string]any{"inventory_id": inventoryID}
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds", body, token)
	if rec.Code != http.StatusCreated {
		return nil, rec.Code
	}

	var resp resdto.HoldResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &resp)
	return &resp, rec.Code
}

func (s *ReservationSuite) TestReservationLifecycle() {
	s.Run("reserve, purchase, and the hold is final", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Concert A", 10, 10)
		holderID := uuid.New()
		token := s.holderToken(holderID)

		hold, code := s.reserve(token, invID)
		s.Require().Equal(http.StatusCreated, code)
		s.Equal("reserved", hold.State)
		s.Equal(holderID, hold.HolderID)

		// Re-reserving returns the same hold without a second decrement.
		again, code := s.reserve(token, invID)
		s.Require().Equal(http.StatusCreated, code)
		s.Equal(hold.ID, again.ID)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds/"+hold.ID.String()+"/purchase", nil, token)
		var purchased resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &purchased)
		s.Equal("purchased", purchased.State)
		s.NotNil(purchased.FinalizedAt)

		// Finalization happens exactly once.
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds/"+hold.ID.String()+"/purchase", nil, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already purchased")

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds/"+hold.ID.String()+"/cancel", nil, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already purchased")
	})

	s.Run("cancel returns the ticket to the pool", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Concert B", 1, 1)
		first := s.holderToken(uuid.New())
		second := s.holderToken(uuid.New())

		hold, code := s.reserve(first, invID)
		s.Require().Equal(http.StatusCreated, code)

		// Sold out for everyone else while the hold is live.
		_, code = s.reserve(second, invID)
		s.Equal(http.StatusConflict, code)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds/"+hold.ID.String()+"/cancel", nil, first)
		var cancelled resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &cancelled)
		s.Equal("cancelled", cancelled.State)

		_, code = s.reserve(second, invID)
		s.Equal(http.StatusCreated, code)
	})

	s.Run("a foreign hold answers like a missing one", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Concert C", 5, 5)
		owner := s.holderToken(uuid.New())
		stranger := s.holderToken(uuid.New())

		hold, code := s.reserve(owner, invID)
		s.Require().Equal(http.StatusCreated, code)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/holds/"+hold.ID.String()+"/purchase", nil, stranger)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Hold not found")

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/holds/"+hold.ID.String(), nil, stranger)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("listing shows only the holder's own holds", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Concert D", 5, 5)
		holderID := uuid.New()
		token := s.holderToken(holderID)
		other := s.holderToken(uuid.New())

		_, code := s.reserve(token, invID)
		s.Require().Equal(http.StatusCreated, code)
		_, code = s.reserve(other, invID)
		s.Require().Equal(http.StatusCreated, code)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/holds", nil, token)
		var holds []resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &holds)
		s.Require().Len(holds, 1)
		s.Equal(holderID, holds[0].HolderID)
	})

	s.Run("requests without a token are rejected", func() {
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/holds", nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *ReservationSuite) TestNoOversellUnderLoad() {
	s.Run("20 holders racing for 10 tickets", func() {
		const capacity = 10
		const holders = 20

		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Popular Concert", capacity, capacity)

		tokens := make([]string, holders)
		for i := range tokens {
			tokens[i] = s.holderToken(uuid.New())
		}

		codes := make(chan int, holders)
		var wg sync.WaitGroup
		for _, token := range tokens {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, code := s.reserve(token, invID)
				codes <- code
			}()
		}
		wg.Wait()
		close(codes)

		created, conflicted := 0, 0
		for code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicted++
			default:
				s.Failf("unexpected status", "got %d", code)
			}
		}

		s.Equal(capacity, created)
		s.Equal(holders-capacity, conflicted)

		var available int32
		err := s.DB.QueryRow(context.Background(),
			"SELECT available FROM inventories WHERE id = $1", invID).Scan(&available)
		s.Require().NoError(err)
		s.Equal(int32(0), available)
	})
}

func (s *ReservationSuite) TestReleaseExpired() {
	s.Run("admin sweeps lapsed holds back into the pool", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Old Concert", 5, 3)

		// Two holds whose TTL lapsed before the sweep.
		past := time.Now().Add(-time.Minute)
		dbtest.CreateTestHold(s.T(), s.DB, invID, uuid.New(), "reserved", past)
		dbtest.CreateTestHold(s.T(), s.DB, invID, uuid.New(), "reserved", past)

		admin := authtest.IssueAdminToken(s.T(), s.Config, uuid.New())
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/inventories/"+invID.String()+"/release-expired", nil, admin)

		var resp resdto.ReleaseExpiredResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(2, resp.Released)

		var available int32
		err := s.DB.QueryRow(context.Background(),
			"SELECT available FROM inventories WHERE id = $1", invID).Scan(&available)
		s.Require().NoError(err)
		s.Equal(int32(5), available)
	})

	s.Run("holders cannot trigger the sweep", func() {
		invID := dbtest.CreateTestInventory(s.T(), s.DB, "Guarded Concert", 5, 5)
		token := s.holderToken(uuid.New())

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/inventories/"+invID.String()+"/release-expired", nil, token)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("unknown inventory", func() {
		admin := authtest.IssueAdminToken(s.T(), s.Config, uuid.New())
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/inventories/"+uuid.New().String()+"/release-expired", nil, admin)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

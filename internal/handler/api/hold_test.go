//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/api"
	resdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/response"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/jwt"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/builder"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/httptest"
	commandsmock "github.com/Holytear/concurrent-ticket-reservation-api/tests/mock/commands"
	queriesmock "github.com/Holytear/concurrent-ticket-reservation-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type HoldHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockHoldQueries
	handler      *api.HoldHandler
	holderID     uuid.UUID
}

func (s *HoldHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.holderID = uuid.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockHoldQueries(s.mockCtrl)
	s.handler = api.NewHoldHandler(s.mockCommands, s.mockQueries, metrics.NewWithRegistry(prometheus.NewRegistry()))

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		c.Set("holder_id", s.holderID)
		c.Set("holder_role", jwt.RoleHolder)
		c.Next()
	}

	s.router.POST("/holds", authMiddleware, s.handler.CreateHold)
	s.router.GET("/holds", authMiddleware, s.handler.ListHolds)
	s.router.GET("/holds/:id", authMiddleware, s.handler.GetHold)
	s.router.POST("/holds/:id/purchase", authMiddleware, s.handler.PurchaseHold)
	s.router.POST("/holds/:id/cancel", authMiddleware, s.handler.CancelHold)
}

func (s *HoldHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestHoldHandlerSuite(t *testing.T) {
	suite.Run(t, new(HoldHandlerTestSuite))
}

// ================================================================================
// TestCreateHold
// ================================================================================

func (s *HoldHandlerTestSuite) TestCreateHold() {
	url := "/holds"
	reqBody := builder.NewHoldBuilder().BuildCreateRequestDTO()

	s.Run("success: returns 201 Created with the hold", func() {
		returnView := builder.NewHoldBuilder().WithHolderID(s.holderID).BuildViewQuery()
		s.mockCommands.EXPECT().Reserve(gomock.Any(), reqBody.InventoryID, s.holderID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(returnView.ID, body.ID)
		s.Equal("reserved", body.State)
	})

	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("error: 400 on missing inventory_id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error mapping from the engine", func() {
		cases := []struct {
			name         string
			engineErr    error
			expectCode   int
			expectInBody string
		}{
			{name: "unknown inventory", engineErr: errs.ErrInventoryNotFound, expectCode: http.StatusNotFound, expectInBody: "Inventory not found"},
			{name: "sold out", engineErr: errs.ErrInventoryExhausted, expectCode: http.StatusConflict, expectInBody: "Inventory is sold out"},
			{name: "store contention", engineErr: errs.ErrStoreContention, expectCode: http.StatusServiceUnavailable},
			{name: "store failure", engineErr: errs.ErrDatabaseOperationFailed, expectCode: http.StatusInternalServerError},
		}
		for _, c := range cases {
			s.Run(c.name, func() {
				s.mockCommands.EXPECT().Reserve(gomock.Any(), reqBody.InventoryID, s.holderID).
					Return(nil, c.engineErr).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, c.expectCode, c.expectInBody)
			})
		}
	})
}

// ================================================================================
// TestPurchaseHold / TestCancelHold
// ================================================================================

func (s *HoldHandlerTestSuite) TestPurchaseHold() {
	holdID := uuid.New()
	url := "/holds/" + holdID.String() + "/purchase"

	s.Run("success: returns 200 with the purchased hold", func() {
		returnView := builder.NewHoldBuilder().
			WithHolderID(s.holderID).
			WithStatus(hold.StatusPurchased).
			BuildViewQuery()
		s.mockCommands.EXPECT().Purchase(gomock.Any(), holdID, s.holderID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("purchased", body.State)
	})

	s.Run("error: 400 on malformed hold ID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/holds/not-a-uuid/purchase", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error mapping from the engine", func() {
		cases := []struct {
			name         string
			engineErr    error
			expectCode   int
			expectInBody string
		}{
			{name: "unknown hold", engineErr: errs.ErrHoldNotFound, expectCode: http.StatusNotFound},
			{name: "foreign hold answers like a missing one", engineErr: errs.ErrUnauthorizedHolder, expectCode: http.StatusNotFound, expectInBody: "Hold not found"},
			{name: "expired hold", engineErr: errs.ErrHoldExpired, expectCode: http.StatusGone},
			{
				name:         "already purchased",
				engineErr:    errs.Mark(&hold.InvalidTransitionError{From: hold.StatusPurchased}, errs.ErrInvalidTransition),
				expectCode:   http.StatusConflict,
				expectInBody: "already purchased",
			},
			{name: "store contention", engineErr: errs.ErrStoreContention, expectCode: http.StatusServiceUnavailable},
		}
		for _, c := range cases {
			s.Run(c.name, func() {
				s.mockCommands.EXPECT().Purchase(gomock.Any(), holdID, s.holderID).
					Return(nil, c.engineErr).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, c.expectCode, c.expectInBody)
			})
		}
	})
}

func (s *HoldHandlerTestSuite) TestCancelHold() {
	holdID := uuid.New()
	url := "/holds/" + holdID.String() + "/cancel"

	s.Run("success: returns 200 with the cancelled hold", func() {
		returnView := builder.NewHoldBuilder().
			WithHolderID(s.holderID).
			WithStatus(hold.StatusCancelled).
			BuildViewQuery()
		s.mockCommands.EXPECT().Cancel(gomock.Any(), holdID, s.holderID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("cancelled", body.State)
	})

	s.Run("error: 409 when already cancelled", func() {
		engineErr := errs.Mark(&hold.InvalidTransitionError{From: hold.StatusCancelled}, errs.ErrInvalidTransition)
		s.mockCommands.EXPECT().Cancel(gomock.Any(), holdID, s.holderID).
			Return(nil, engineErr).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already cancelled")
	})
}

// ================================================================================
// TestGetHold / TestListHolds
// ================================================================================

func (s *HoldHandlerTestSuite) TestGetHold() {
	s.Run("success: returns the hold", func() {
		returnView := builder.NewHoldBuilder().WithHolderID(s.holderID).BuildViewQuery()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.holderID, returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/holds/"+returnView.ID.String(), nil, "bearer-token")

		var body resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(returnView.ID, body.ID)
	})

	s.Run("error: 404 for an unknown hold", func() {
		unknownID := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.holderID, unknownID).
			Return(nil, errs.ErrHoldNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/holds/"+unknownID.String(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

func (s *HoldHandlerTestSuite) TestListHolds() {
	s.Run("success: returns the holder's holds", func() {
		v1 := builder.NewHoldBuilder().WithHolderID(s.holderID).BuildViewQuery()
		v2 := builder.NewHoldBuilder().WithHolderID(s.holderID).WithStatus(hold.StatusPurchased).BuildViewQuery()
		s.mockQueries.EXPECT().ListByHolder(gomock.Any(), s.holderID).
			Return([]*queries.HoldView{v1, v2}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/holds", nil, "bearer-token")

		var body []resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 2)
		s.Equal(v1.ID, body[0].ID)
	})

	s.Run("success: empty list for a holder without holds", func() {
		s.mockQueries.EXPECT().ListByHolder(gomock.Any(), s.holderID).
			Return([]*queries.HoldView{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/holds", nil, "bearer-token")

		var body []resdto.HoldResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Empty(body)
	})
}

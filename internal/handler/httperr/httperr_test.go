//go:build unit

package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/httperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("writes the envelope and records the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		cause := errors.New("inventory lookup failed")
		httperr.AbortWithError(c, http.StatusNotFound, cause, "Inventory not found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.True(t, c.IsAborted())

		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Inventory not found", body.Error.Message)

		require.Len(t, c.Errors, 1)
		assert.ErrorIs(t, c.Errors[0].Err, cause)
		resp, ok := c.Errors[0].Meta.(httperr.Response)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("nil cause still writes the envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, c.Errors)
	})
}

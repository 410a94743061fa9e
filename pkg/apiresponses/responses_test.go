package apiresponses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		respond     func(c *gin.Context)
		wantStatus  int
		wantError   string
		wantErrCode string
	}{
		{
			name:        "Bad request",
			respond:     func(c *gin.Context) { RespondBadRequest(c, "No data provided") },
			wantStatus:  http.StatusBadRequest,
			wantError:   "No data provided",
			wantErrCode: "BAD_REQUEST",
		},
		{
			name:        "Not found",
			respond:     func(c *gin.Context) { RespondNotFoundSimple(c, "not found") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not found",
			wantErrCode: "NOT_FOUND",
		},
		{
			name:        "Method not allowed",
			respond:     RespondMethodNotAllowed,
			wantStatus:  http.StatusMethodNotAllowed,
			wantError:   "method not allowed",
			wantErrCode: "METHOD_NOT_ALLOWED",
		},
		{
			name:        "Request too large",
			respond:     func(c *gin.Context) { RespondRequestEntityTooLarge(c, "Request body too large") },
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantError:   "Request body too large",
			wantErrCode: "REQUEST_TOO_LARGE",
		},
		{
			name:        "Internal error",
			respond:     func(c *gin.Context) { RespondInternalErrorSimple(c, "Failed to send email") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Failed to send email",
			wantErrCode: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.respond(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantErrCode, body.Code)
		})
	}
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondOK(c, gin.H{"status": "healthy"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

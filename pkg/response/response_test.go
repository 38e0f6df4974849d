package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	customError "github.com/segyhp/loan-engine/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, "Loan created successfully", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Loan created successfully", body["message"])
	assert.Equal(t, "abc", body["data"].(map[string]interface{})["id"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantCode    string
	}{
		{
			name:        "validation",
			err:         customError.WrapValidation("Amount must be a positive number"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Amount must be a positive number",
			wantCode:    customError.ErrCodeValidation,
		},
		{
			name:        "already paid",
			err:         customError.WrapLoanAlreadyPaid("42"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Loan with ID 42 is already paid",
			wantCode:    customError.ErrCodeLoanAlreadyPaid,
		},
		{
			name:        "not found",
			err:         customError.WrapLoanNotFound("42"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Loan with ID 42 not found",
			wantCode:    customError.ErrCodeLoanNotFound,
		},
		{
			name:        "unauthorized",
			err:         customError.WrapUnauthorized("Token is not valid"),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Token is not valid",
			wantCode:    customError.ErrCodeUnauthorized,
		},
		{
			name:        "client code without its sentinel is treated as a server error",
			err:         customError.NewBusinessError(customError.ErrCodeValidation, "pq: value too long", errors.New("pq: value too long")),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
		{
			name:        "ledger failure hides detail",
			err:         customError.WrapLedgerWriteFailed(errors.New("pq: relation expenses does not exist")),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
		{
			name:        "plain error",
			err:         errors.New("begin transaction: connection reset"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
	}

	zap.ReplaceGlobals(zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)

			FromError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error"])
			} else {
				assert.NotContains(t, rec.Body.String(), "pq:")
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/loans", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	handler := LoggingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/authorization"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeErrorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Type
}

func TestErrorMiddlewareMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		payload string
	}{
		{"farmer not found", farmerdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"settlement farmer not found", settlementdomain.ErrFarmerNotFound, http.StatusNotFound, "not_found"},
		{"unknown rate type", settlementdomain.ErrUnknownRateType, http.StatusBadRequest, "validation_error"},
		{"invalid period", settlementdomain.ErrInvalidPeriod, http.StatusBadRequest, "validation_error"},
		{"bad credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"duplicate code", farmerdomain.ErrCodeTaken, http.StatusConflict, "conflict"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performWithError(t, tc.err)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if got := decodeErrorType(t, w); got != tc.payload {
				t.Fatalf("error type = %s, want %s", got, tc.payload)
			}
		})
	}
}

func TestErrorMiddlewareCarriesFieldErrors(t *testing.T) {
	w := performWithError(t, newValidationError("farmerId", "invalid_farmer_id", "invalid farmer id"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != "farmerId" {
		t.Fatalf("field errors = %+v", body.Error.Errors)
	}
}

func TestErrorMiddlewareDefaultsToInternal(t *testing.T) {
	w := performWithError(t, http.ErrHandlerTimeout)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeErrorType(t, w); got != "internal_error" {
		t.Fatalf("error type = %s, want internal_error", got)
	}
}

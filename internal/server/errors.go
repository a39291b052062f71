package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/authorization"
	collectiondomain "github.com/smallbiznis/dairypro/internal/collection/domain"
	dashboarddomain "github.com/smallbiznis/dairypro/internal/dashboard/domain"
	expensedomain "github.com/smallbiznis/dairypro/internal/expense/domain"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	productdomain "github.com/smallbiznis/dairypro/internal/product/domain"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, farmerdomain.ErrCodeTaken),
		errors.Is(err, productdomain.ErrNameTaken),
		errors.Is(err, productdomain.ErrReferencedBySales):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, farmerdomain.ErrInvalidName),
		errors.Is(err, farmerdomain.ErrInvalidMilkType),
		errors.Is(err, farmerdomain.ErrInvalidRateType),
		errors.Is(err, farmerdomain.ErrInvalidID):
		return true
	case errors.Is(err, collectiondomain.ErrInvalidID),
		errors.Is(err, collectiondomain.ErrInvalidShift),
		errors.Is(err, collectiondomain.ErrInvalidQuantity):
		return true
	case errors.Is(err, advancedomain.ErrInvalidID),
		errors.Is(err, advancedomain.ErrInvalidAmount):
		return true
	case errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidQuantity):
		return true
	case errors.Is(err, saledomain.ErrInvalidID),
		errors.Is(err, saledomain.ErrInvalidQuantity):
		return true
	case errors.Is(err, expensedomain.ErrInvalidAmount),
		errors.Is(err, expensedomain.ErrInvalidCategory):
		return true
	case errors.Is(err, dashboarddomain.ErrInvalidRange),
		errors.Is(err, dashboarddomain.ErrInvalidPeriod),
		errors.Is(err, dashboarddomain.ErrInvalidReportType):
		return true
	case errors.Is(err, settlementdomain.ErrInvalidPeriod),
		errors.Is(err, settlementdomain.ErrUnknownRateType):
		return true
	case errors.Is(err, authdomain.ErrWeakPassword):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, farmerdomain.ErrNotFound),
		errors.Is(err, collectiondomain.ErrNotFound),
		errors.Is(err, collectiondomain.ErrFarmerNotFound),
		errors.Is(err, advancedomain.ErrFarmerNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, saledomain.ErrProductNotFound),
		errors.Is(err, settlementdomain.ErrFarmerNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog gives the request logger a stable error taxonomy
// without serializing full payloads into log lines.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

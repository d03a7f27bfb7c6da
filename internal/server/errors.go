package server

import (
	"errors"
	"net/http"
	"strings"

	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/internal/feeschedule"
	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/gin-gonic/gin"
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
	ErrInternal       = errors.New("internal_error")
	ErrNotFoundRoute  = errors.New("not_found")
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
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
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
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, feeschedule.ErrInvalidAmount),
		errors.Is(err, feeschedule.ErrInvalidInstallmentCount),
		errors.Is(err, catalogdomain.ErrInvalidBranch),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidCourseType),
		errors.Is(err, catalogdomain.ErrInvalidDuration),
		errors.Is(err, catalogdomain.ErrInvalidValue),
		errors.Is(err, catalogdomain.ErrUnknownSubject),
		errors.Is(err, studentdomain.ErrInvalidBranch),
		errors.Is(err, studentdomain.ErrInvalidName),
		errors.Is(err, studentdomain.ErrInvalidPhone),
		errors.Is(err, studentdomain.ErrInvalidID),
		errors.Is(err, leaddomain.ErrInvalidBranch),
		errors.Is(err, leaddomain.ErrInvalidName),
		errors.Is(err, leaddomain.ErrInvalidPhone),
		errors.Is(err, leaddomain.ErrInvalidID),
		errors.Is(err, leaddomain.ErrInvalidStatus),
		errors.Is(err, admissiondomain.ErrInvalidBranch),
		errors.Is(err, admissiondomain.ErrInvalidID),
		errors.Is(err, admissiondomain.ErrInvalidCourse),
		errors.Is(err, admissiondomain.ErrInvalidSubjects),
		errors.Is(err, boardbillingdomain.ErrInvalidID),
		errors.Is(err, boardbillingdomain.ErrInvalidMonth),
		errors.Is(err, boardbillingdomain.ErrInvalidSubjects),
		errors.Is(err, boardbillingdomain.ErrNotBoard),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrChequeDetailMissing):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFoundRoute),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, studentdomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, admissiondomain.ErrNotFound),
		errors.Is(err, admissiondomain.ErrInstallmentMissing),
		errors.Is(err, boardbillingdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrInstallmentNotFound),
		errors.Is(err, paymentdomain.ErrMonthNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrDuplicateSlug),
		errors.Is(err, leaddomain.ErrAlreadyConverted),
		errors.Is(err, leaddomain.ErrLeadClosed),
		errors.Is(err, boardbillingdomain.ErrMonthFrozen),
		errors.Is(err, paymentdomain.ErrAlreadyPaid),
		errors.Is(err, paymentdomain.ErrNotInClearance),
		errors.Is(err, paymentdomain.ErrPaymentInProgress):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, paymentdomain.ErrPaymentInProgress):
		return "another payment for this row is in progress"
	case errors.Is(err, paymentdomain.ErrAlreadyPaid):
		return "already paid"
	case errors.Is(err, boardbillingdomain.ErrMonthFrozen):
		return "month is frozen after payment"
	default:
		return "conflict"
	}
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

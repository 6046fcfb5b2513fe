// Package errors provides the structured error type shared by the planner services
// and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeCacheError         ErrorCode = "CACHE_ERROR"

	// Planner errors. These describe inputs the user can correct.
	CodeProfileNotFound    ErrorCode = "PROFILE_NOT_FOUND"
	CodeMealPlanNotFound   ErrorCode = "MEAL_PLAN_NOT_FOUND"
	CodeNoMatchingRecipes  ErrorCode = "NO_MATCHING_RECIPES"
	CodeEmptyMealSlot      ErrorCode = "EMPTY_MEAL_SLOT"
	CodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	CodeInvalidRating      ErrorCode = "INVALID_RATING"
	CodeDayOutOfRange      ErrorCode = "DAY_OUT_OF_RANGE"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status code for the error
func (e *AppError) StatusCode() int {
	return HTTPStatus(e.Code)
}

// HTTPStatus maps an error code to an HTTP status code
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeBadRequest, CodeValidationFailed, CodeInvalidRating, CodeDayOutOfRange:
		return http.StatusBadRequest
	case CodeNotFound, CodeProfileNotFound, CodeMealPlanNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeNoMatchingRecipes, CodeEmptyMealSlot:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", capitalize(resource))
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewCacheError creates a cache error
func NewCacheError(operation string, cause error) *AppError {
	return NewAppError(
		CodeCacheError,
		"Cache operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewProfileNotFoundError creates a profile not found error
func NewProfileNotFoundError(userID string) *AppError {
	return NewAppError(
		CodeProfileNotFound,
		"Profile not found",
		fmt.Sprintf("Profile with ID %s does not exist", userID),
	).WithMetadata("user_id", userID)
}

// NewMealPlanNotFoundError creates an error for a user without any saved plan
func NewMealPlanNotFoundError(userID string) *AppError {
	return NewAppError(
		CodeMealPlanNotFound,
		"Meal plan not found",
		"No meal plan has been generated yet",
	).WithMetadata("user_id", userID)
}

// NewNoMatchingRecipesError reports that filtering left nothing to plan with
func NewNoMatchingRecipesError(cause error) *AppError {
	return NewAppError(
		CodeNoMatchingRecipes,
		"No recipes available that match your preferences. Try adjusting filters.",
		"",
	).WithCause(cause)
}

// NewEmptyMealSlotError reports a meal slot without candidates
func NewEmptyMealSlotError(slot string, cause error) *AppError {
	return NewAppError(
		CodeEmptyMealSlot,
		fmt.Sprintf("No %s recipes found. Adjust preferences.", slot),
		"",
	).WithCause(cause).WithMetadata("slot", slot)
}

// NewCatalogUnavailableError reports an empty or missing reference dataset
func NewCatalogUnavailableError(dataset string) *AppError {
	return NewAppError(
		CodeCatalogUnavailable,
		"Catalog unavailable",
		fmt.Sprintf("The %s dataset is empty", dataset),
	).WithMetadata("dataset", dataset)
}

// NewInvalidRatingError creates an invalid rating error
func NewInvalidRatingError(value int) *AppError {
	return NewAppError(
		CodeInvalidRating,
		"Invalid rating",
		fmt.Sprintf("Rating %d is outside 1-5", value),
	).WithMetadata("rating", value)
}

// NewDayOutOfRangeError creates an error for a plan day that does not exist
func NewDayOutOfRangeError(day, days int) *AppError {
	return NewAppError(
		CodeDayOutOfRange,
		"Day out of range",
		fmt.Sprintf("Day %d is not in a %d-day plan", day, days),
	).WithMetadata("day", day)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// NewValidationErrors creates validation errors from field errors
func NewValidationErrors(errs []ValidationError) *AppError {
	validationErrs := ValidationErrors(errs)

	return NewAppError(
		CodeValidationFailed,
		"Validation failed",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error payload
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Metadata:  err.Metadata,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

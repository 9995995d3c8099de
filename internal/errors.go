package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated   ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeUnavailable       ErrorType = "UNAVAILABLE"
	ErrorTypeRateLimited       ErrorType = "RATE_LIMITED"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDateRange ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidValue     ErrorCode = "INVALID_VALUE"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"

	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	ErrCodeDuplicateIdentity ErrorCode = "DUPLICATE_IDENTITY"
	ErrCodeDuplicateValue    ErrorCode = "DUPLICATE_VALUE"
	ErrCodeSingletonExists   ErrorCode = "SINGLETON_EXISTS"
	ErrCodeSelfDemotion      ErrorCode = "SELF_DEMOTION"
	ErrCodeInUse             ErrorCode = "IN_USE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodePasswordReset      ErrorCode = "PASSWORD_RESET_REQUIRED"

	ErrCodeMaintenance ErrorCode = "MAINTENANCE"
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	ErrCodeInternal    ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that sentinel values compare equal to
// copies carrying different causes or details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

type TransitionDetails struct {
	From      string `json:"from"`
	Attempted string `json:"attempted"`
}

type NotFoundDetails struct {
	Entity string      `json:"entity"`
	ID     interface{} `json:"id"`
}

type CapabilityDetails struct {
	Capability string `json:"capability"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s %v not found", entity, id),
		StatusCode: http.StatusNotFound,
		Details:    NotFoundDetails{Entity: entity, ID: id},
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(capability string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       ErrCodeForbidden,
		Message:    fmt.Sprintf("you do not have permission to %s", strings.ReplaceAll(capability, "_", " ")),
		StatusCode: http.StatusForbidden,
		Details:    CapabilityDetails{Capability: capability},
	}
}

func NewInvalidTransitionError(from, attempted string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       ErrCodeInvalidTransition,
		Message:    fmt.Sprintf("cannot move from %s to %s", from, attempted),
		StatusCode: http.StatusConflict,
		Details:    TransitionDetails{From: from, Attempted: attempted},
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewUnavailableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUnauthenticated    = NewUnauthenticatedError("authentication required", ErrCodeUnauthenticated)
	ErrInvalidCredentials = NewUnauthenticatedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrAccountInactive    = NewUnauthenticatedError("account is inactive", ErrCodeAccountInactive)
	ErrInvalidToken       = NewUnauthenticatedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthenticatedError("token has expired", ErrCodeTokenExpired)

	ErrInvalidBody  = NewValidationError("invalid request body", ErrCodeInvalidBody)
	ErrMaintenance  = NewUnavailableError("the system is under maintenance", ErrCodeMaintenance)
	ErrRateLimited  = &AppError{Type: ErrorTypeRateLimited, Code: ErrCodeRateLimited, Message: "too many requests", StatusCode: http.StatusTooManyRequests}
	ErrSelfDemotion = NewConflictError("administrators cannot change their own role", ErrCodeSelfDemotion)

	ErrPasswordResetRequired = &AppError{Type: ErrorTypeForbidden, Code: ErrCodePasswordReset, Message: "change your password before continuing", StatusCode: http.StatusForbidden}
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an *AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

// Response is the JSON error envelope. Error carries the error type.
type Response struct {
	Error   ErrorType   `json:"error"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, e.response()
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.response())
}

func (e *AppError) response() Response {
	return Response{
		Error:   e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	// Ошибки пользователей
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserBanned      ErrorCode = "USER_BANNED"
	ErrCodeInvalidUserData ErrorCode = "INVALID_USER_DATA"

	// Ошибки вывода средств
	ErrCodeBelowMinimum        ErrorCode = "BELOW_MINIMUM"
	ErrCodeAboveMaximum        ErrorCode = "ABOVE_MAXIMUM"
	ErrCodeFeeNotPaid          ErrorCode = "FEE_NOT_PAID"
	ErrCodeOneTimeLimitUsed    ErrorCode = "ONE_TIME_LIMIT_USED"
	ErrCodeInvalidSessionState ErrorCode = "INVALID_SESSION_STATE"

	// Ошибки баланса и платежей
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodePaymentFailed       ErrorCode = "PAYMENT_FAILED"
	ErrCodeNoWalletLinked      ErrorCode = "NO_WALLET_LINKED"

	// Ошибки симуляции
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// Ошибки хранилища
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeStorageError  ErrorCode = "STORAGE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"

	// Ошибки внешних API
	ErrCodeExternalAPI ErrorCode = "EXTERNAL_API_ERROR"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeUserNotFound
}

// IsValidation covers every error that is recovered locally and shown to the user as-is.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeInvalidUserData, ErrCodeBadRequest,
		ErrCodeBelowMinimum, ErrCodeAboveMaximum, ErrCodeFeeNotPaid,
		ErrCodeOneTimeLimitUsed, ErrCodeInvalidSessionState,
		ErrCodeInsufficientBalance, ErrCodeNoWalletLinked:
		return true
	}
	return false
}

func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden || e.Code == ErrCodeUserBanned
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeStorageError ||
		e.Code == ErrCodeCacheError
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Конструкторы для часто используемых ошибок

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUserNotFoundError(userID int64) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("User not found: %d", userID)).
		WithDetail("user_id", userID)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

func NewUserBannedError(reason string, expires *time.Time) *AppError {
	appErr := New(ErrCodeUserBanned, "Your account has been banned")
	if reason != "" {
		appErr.WithDetail("reason", reason)
	}
	if expires != nil {
		appErr.WithDetail("expires", expires.UTC())
	}
	return appErr
}

func NewBelowMinimumError(minimum, amount float64) *AppError {
	return New(ErrCodeBelowMinimum, fmt.Sprintf("Minimum withdrawal amount is %s", formatAmount(minimum))).
		WithDetail("minimum", minimum).
		WithDetail("amount", amount)
}

func NewAboveMaximumError(maximum, amount float64) *AppError {
	return New(ErrCodeAboveMaximum, fmt.Sprintf("Maximum withdrawal amount is %s", formatAmount(maximum))).
		WithDetail("maximum", maximum).
		WithDetail("amount", amount)
}

func NewFeeNotPaidError(sessionID string) *AppError {
	return New(ErrCodeFeeNotPaid, "Please pay the fee first").
		WithDetail("session_id", sessionID)
}

func NewOneTimeLimitError(plan string) *AppError {
	return New(ErrCodeOneTimeLimitUsed, fmt.Sprintf("The %s plan allows a single withdrawal", plan)).
		WithDetail("plan", plan)
}

func NewInvalidSessionStateError(sessionID, state, action string) *AppError {
	return New(ErrCodeInvalidSessionState, fmt.Sprintf("Cannot %s a withdrawal in state %s", action, state)).
		WithDetail("session_id", sessionID).
		WithDetail("state", state)
}

func NewInsufficientBalanceError(balance, required float64) *AppError {
	return New(ErrCodeInsufficientBalance, "Insufficient balance").
		WithDetail("balance", balance).
		WithDetail("required", required)
}

func NewPaymentFailedError(operation string, err error) *AppError {
	return Wrap(err, ErrCodePaymentFailed, fmt.Sprintf("Payment failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewNoWalletLinkedError carries the remediation the client should offer.
func NewNoWalletLinkedError() *AppError {
	return New(ErrCodeNoWalletLinked, "You do not have a linked wallet").
		WithDetail("remediation", "link_wallet")
}

func NewMalformedInputError(field string, value interface{}) *AppError {
	return New(ErrCodeMalformedInput, fmt.Sprintf("Malformed input for %s", field)).
		WithDetail("field", field).
		WithDetail("value", fmt.Sprintf("%v", value))
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageError, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewCacheError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCacheError, fmt.Sprintf("Cache operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError приводит ошибку к AppError, проходя по цепочке Unwrap
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func formatAmount(v float64) string {
	if math.IsInf(v, 1) {
		return "unlimited"
	}
	return fmt.Sprintf("%.2f", v)
}

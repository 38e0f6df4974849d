package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrLoanAlreadyPaid      = errors.New("loan is already paid")
	ErrLedgerWriteFailed    = errors.New("ledger write failed")
	ErrUnauthorized         = errors.New("unauthorized")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	ErrCodeLoanAlreadyPaid      = "LOAN_ALREADY_PAID"
	ErrCodeLedgerWriteFailed    = "LEDGER_WRITE_FAILED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
)

// WrapValidation reports user-correctable input problems. The message is shown to the caller.
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapNotificationNotFound(notificationID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotificationNotFound,
		fmt.Sprintf("Notification with ID %s not found", notificationID),
		ErrNotificationNotFound,
	)
}

func WrapLoanAlreadyPaid(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyPaid,
		fmt.Sprintf("Loan with ID %s is already paid", loanID),
		ErrLoanAlreadyPaid,
	)
}

func WrapLedgerWriteFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeLedgerWriteFailed,
		"ledger write failed",
		errors.Join(ErrLedgerWriteFailed, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// WrapUnauthorized reports a missing or rejected credential
func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(ErrCodeUnauthorized, message, ErrUnauthorized)
}

// Code returns the business code carried by err, or an empty string
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsClientError reports whether err should be surfaced to the caller as-is
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrLoanAlreadyPaid) ||
		errors.Is(err, ErrUnauthorized)
}

// PublicMessage returns the human-readable message of a business error
func PublicMessage(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

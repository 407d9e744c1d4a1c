package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies failures returned by the request services
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPolicy     ErrorKind = "policy_denied"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindConflict   ErrorKind = "conflict"
	KindStorage    ErrorKind = "storage_failure"
	KindInternal   ErrorKind = "internal"
)

// Error codes surfaced to API clients
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeChannelNotAllowed   = "CHANNEL_NOT_ALLOWED"
	CodeRoleNotAllowed      = "ROLE_NOT_ALLOWED"
	CodeTypeRestricted      = "REQUEST_TYPE_RESTRICTED"
	CodeInvalidCount        = "INVALID_COUNT"
	CodeRequestTypeNotFound = "REQUEST_TYPE_NOT_FOUND"
	CodeRequestNotFound     = "REQUEST_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeNotificationMissing = "NOTIFICATION_NOT_FOUND"
	CodeDuplicatePending    = "DUPLICATE_PENDING"
	CodeNotPending          = "NOT_PENDING"
	CodeForbidden           = "FORBIDDEN"
	CodeStorageFailed       = "RECEIPT_STORAGE_FAILED"
	CodeDatabase            = "DATABASE_ERROR"
)

// AppError is the typed failure returned by every service operation
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]string // field-level detail for validation failures
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation failure, optionally with field details
func NewValidationError(message string, details map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Code: CodeValidation, Message: message, Details: details}
}

// NewPolicyError creates a business-rule rejection
func NewPolicyError(code, reason string) *AppError {
	return &AppError{Kind: KindPolicy, Code: code, Message: reason}
}

// NewNotFoundError creates a missing-entity failure
func NewNotFoundError(code, resource string, id interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: fmt.Sprintf("%s with ID %v not found", resource, id)}
}

// NewForbiddenError creates a role or ownership failure
func NewForbiddenError(code, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

// NewConflictError creates a state conflict failure
func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// NewStorageError wraps a receipt store failure
func NewStorageError(message string, err error) *AppError {
	return &AppError{Kind: KindStorage, Code: CodeStorageFailed, Message: message, Err: err}
}

// NewInternalError wraps an unexpected failure such as a database error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeDatabase, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// isUniqueViolation detects duplicate key errors from PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

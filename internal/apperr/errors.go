// Package apperr defines the domain error kinds returned by the services
// and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kind classifies an Error.
type Kind string

const (
	Validation       Kind = "validation_error"
	InvalidValue     Kind = "invalid_value"
	InvalidReference Kind = "invalid_reference"
	DuplicateInInput Kind = "duplicate_in_input"
	DuplicateEntity  Kind = "duplicate_entity"
	NotFound         Kind = "not_found"
	Forbidden        Kind = "forbidden"
	Unauthorized     Kind = "unauthorized"
	AlreadyExists    Kind = "already_exists"
	NotPresent       Kind = "not_present"
	SelfFollow       Kind = "self_follow"
	AlreadyFollowing Kind = "already_following"
	NotFollowing     Kind = "not_following"
	SelfReference    Kind = "self_reference_forbidden"
	TooLarge         Kind = "request_too_large"
	Internal         Kind = "internal_error"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case DuplicateEntity:
		return http.StatusConflict
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewField creates an Error of the given kind attributed to a request field.
func NewField(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string, id any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("%s with id %v not found", resource, id)}
}

func NewValidationError(field, message string) *Error {
	return &Error{Kind: Validation, Field: field, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: Forbidden, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: Unauthorized, Message: message}
}

func NewInternalError(err error) *Error {
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code := sqlState(err); code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsCheckViolation reports whether err was raised by a check constraint.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	if code := sqlState(err); code == "23514" {
		return true
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// IsForeignKeyViolation reports whether err was raised by a foreign key.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if code := sqlState(err); code == "23503" {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// FromDB classifies a storage error. Constraint violations become the
// supplied kind; record-not-found becomes NotFound; anything else is Internal.
func FromDB(err error, onConstraint Kind, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: NotFound, Message: message, Err: err}
	case IsUniqueViolation(err), IsCheckViolation(err):
		return &Error{Kind: onConstraint, Message: message, Err: err}
	case IsForeignKeyViolation(err):
		return &Error{Kind: InvalidReference, Message: message, Err: err}
	}
	return NewInternalError(err)
}

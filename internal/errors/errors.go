package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrFailedPrecond   = errors.New("failed precondition")
	ErrInternalError   = errors.New("internal error")
)

// DomainError is the base error type carried across package boundaries,
// tagging the failure with the entity it belongs to.
type DomainError struct {
	ErrorType  error
	Entity     string
	Message    string
	WrappedErr error
}

func NewError(errType error, entity, message string) *DomainError {
	return &DomainError{
		ErrorType: errType,
		Entity:    entity,
		Message:   message,
	}
}

func InvalidArgument(entity, message string) *DomainError {
	return NewError(ErrInvalidArgument, entity, message)
}

func NotFound(entity, message string) *DomainError {
	return NewError(ErrNotFound, entity, message)
}

func AlreadyExists(entity, message string) *DomainError {
	return NewError(ErrAlreadyExists, entity, message)
}

func FailedPrecondition(entity, message string) *DomainError {
	return NewError(ErrFailedPrecond, entity, message)
}

func InternalError(entity, message string, err error) *DomainError {
	return &DomainError{
		ErrorType:  ErrInternalError,
		Entity:     entity,
		Message:    message,
		WrappedErr: err,
	}
}

// Wrap keeps err as the cause while attaching entity context, preserving the
// wrapped error's type when it is already a DomainError.
func Wrap(entity, message string, err error) *DomainError {
	errType := ErrInternalError
	var de *DomainError
	if errors.As(err, &de) {
		errType = de.ErrorType
	}
	return &DomainError{
		ErrorType:  errType,
		Entity:     entity,
		Message:    message,
		WrappedErr: err,
	}
}

func WrapIfErr(entity, message string, err error) error {
	if err == nil {
		return nil
	}
	return Wrap(entity, message, err)
}

// AddErrContext prefixes entity context on an existing error without
// changing its type.
func AddErrContext(err error, entity, message string) error {
	if err == nil {
		return nil
	}
	return Wrap(entity, message, err)
}

func (e *DomainError) Error() string {
	if e.WrappedErr != nil {
		return fmt.Sprintf("%s for entity %s: %s", e.Message, e.Entity, e.WrappedErr.Error())
	}
	return fmt.Sprintf("%s for entity %s", e.Message, e.Entity)
}

func (e *DomainError) Unwrap() error {
	return e.WrappedErr
}

func (e *DomainError) Is(target error) bool {
	return errors.Is(e.ErrorType, target)
}

func IsErrorType(err error, errType error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return errors.Is(de.ErrorType, errType)
	}
	return false
}

// Is, As and New are re-exported so callers need a single errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(message string) error { return errors.New(message) }

// MultiError accumulates errors from batch operations; nil appends are
// ignored so callers can append unconditionally.
type MultiError struct {
	Message string
	Errors  []error
}

func NewMultiError(message string) *MultiError {
	return &MultiError{Message: message}
}

func (m *MultiError) Append(err error) {
	if err == nil {
		return
	}
	var me *MultiError
	if errors.As(err, &me) {
		m.Errors = append(m.Errors, me.Errors...)
		return
	}
	m.Errors = append(m.Errors, err)
}

func (m *MultiError) Error() string {
	parts := make([]string, 0, len(m.Errors))
	for _, err := range m.Errors {
		parts = append(parts, err.Error())
	}
	return m.Message + ":\n" + strings.Join(parts, "\n")
}

// ToErr returns nil when nothing was accumulated, so the MultiError can be
// returned directly from functions with an error result.
func (m *MultiError) ToErr() error {
	if m == nil || len(m.Errors) == 0 {
		return nil
	}
	return m
}

package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError indicates that a referenced record does not exist. HTTP 404.
type NotFoundError struct {
	Message   string
	MessageUz string
}

func NewNotFoundError(msg, msgUz string) error {
	return &NotFoundError{Message: msg, MessageUz: msgUz}
}

func (err NotFoundError) Error() string { return err.Message }

// ConflictError indicates a unique-constraint violation. HTTP 409.
type ConflictError struct {
	Message   string
	MessageUz string
}

func NewConflictError(msg, msgUz string) error {
	return &ConflictError{Message: msg, MessageUz: msgUz}
}

func (err ConflictError) Error() string { return err.Message }

// ReferenceError indicates a write referencing a non-existent related record
// (foreign-key violation). HTTP 400.
type ReferenceError struct {
	Message   string
	MessageUz string
}

func NewReferenceError(msg, msgUz string) error {
	return &ReferenceError{Message: msg, MessageUz: msgUz}
}

func (err ReferenceError) Error() string { return err.Message }

// ForbiddenError indicates a role/ownership denial. HTTP 403.
type ForbiddenError struct {
	Reason string
}

func NewForbiddenError(reason string) error {
	return &ForbiddenError{Reason: reason}
}

func (err ForbiddenError) Error() string { return err.Reason }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

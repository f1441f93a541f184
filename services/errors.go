package services

import (
	"errors"
	"fmt"
)

// Kind classifies an expected business-rule failure. Every core operation
// returns one of these instead of collapsing into a generic error; callers
// map kinds to transport codes.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidState        Kind = "invalid_state"
	KindConflict            Kind = "conflict"
	KindDuplicateAssignment Kind = "duplicate_assignment"
	KindDOIAlreadyAssigned  Kind = "doi_already_assigned"
	KindAlreadyPaid         Kind = "already_paid"
	KindMissingDOI          Kind = "missing_doi"
	KindIssueNotFound       Kind = "issue_not_found"
	KindValidation          Kind = "validation"
)

// Error is the discriminated error returned by core operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the kind from an error, or "" for unexpected failures
// (storage errors and the like) that should propagate as fatal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func forbiddenf(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func invalidStatef(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

func conflictf(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func validationf(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

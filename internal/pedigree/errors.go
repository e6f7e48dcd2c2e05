package pedigree

import (
	"errors"
	"fmt"
)

// Error kinds raised by Person operations.
var (
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidGender       = errors.New("invalid gender")
	ErrRoleMismatch        = errors.New("role mismatch")
	ErrCycleDetected       = errors.New("cycle detected")
	ErrUnknownParentGender = errors.New("unknown parent gender")
	ErrParentAlreadySet    = errors.New("parent already set")
	ErrNoSuchRelation      = errors.New("no such relation")
	ErrInconsistentGraph   = errors.New("inconsistent graph")
	ErrDuplicatePosition   = errors.New("duplicate position")
	ErrVariantAttached     = errors.New("variant already attached")
	ErrNoSuchVariant       = errors.New("no such variant")
)

// ErrInvalidRange is raised by traversal when the depth range is empty or negative.
var ErrInvalidRange = errors.New("invalid depth range")

// Error kinds raised while loading a pedigree.
var (
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnknownParent       = errors.New("unknown parent")
	ErrCyclicPedigree      = errors.New("cyclic pedigree")
	ErrPeopleNotLoaded     = errors.New("people not loaded")
	ErrPeopleAlreadyLoaded = errors.New("people already loaded")
	ErrUnknownPerson       = errors.New("unknown person")
	ErrDuplicateVariant    = errors.New("duplicate variant")
	ErrInvalidVariant      = errors.New("invalid variant")
)

// Error describes a failed pedigree operation. Kind is one of the Err*
// values above and is returned by Unwrap, so errors.Is(err, ErrCycleDetected)
// works on any *Error.
type Error struct {
	Kind    error
	Subject string // offending person name or variant locus
	Line    int    // input line for ingestion failures, 0 if not applicable
	Detail  string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Subject)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}

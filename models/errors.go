package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the ledger core. Every error carries enough context
// (entity, id, attempted operation, previous vs attempted value) for the
// consuming layer to render a meaningful message. Higher components may wrap
// these with fmt.Errorf("...: %w", err) but must not swallow them.

// ValidationError reports malformed input. Recoverable by the caller
// correcting the input; never retried automatically.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid %s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

// ReferentialError reports a reference that does not resolve (e.g. a roll
// pointing at a missing fabric type). Surfaced to the operator; never
// auto-healed by deleting data.
type ReferentialError struct {
	Entity      string
	EntityId    int
	Reference   string
	ReferenceId int
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d: %s %d does not exist", e.Entity, e.EntityId, e.Reference, e.ReferenceId)
}

// ConflictError reports an optimistic-lock mismatch on transition/correct.
// The caller decides to retry with a re-read version or abort.
type ConflictError struct {
	Entity    string
	EntityId  int
	Op        string
	Version   int
	Current   string
	Attempted string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s conflict at version %d (current %q, attempted %q)",
		e.Entity, e.EntityId, e.Op, e.Version, e.Current, e.Attempted)
}

// NotFoundError reports an id-based lookup miss on checks, orders or rolls.
type NotFoundError struct {
	Entity   string
	EntityId int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.EntityId)
}

// IntegrityWarning is non-fatal: the validator applies a conservative
// default but the original invalid value is diagnostically important and is
// always logged, never hidden.
type IntegrityWarning struct {
	Entity   string
	EntityId int
	Field    string
	Original string
	Applied  string
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("%s %d: repaired %s %q -> %q", w.Entity, w.EntityId, w.Field, w.Original, w.Applied)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsReferential(err error) bool {
	var e *ReferentialError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

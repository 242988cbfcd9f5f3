package archive

import "fmt"

// ValidationError reports a malformed or incomplete case record. It is
// surfaced inline on the form and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid case record: %s %s", e.Field, e.Reason)
}

// DuplicateCaseNumberError reports a create collision on the case number.
// Comparison is case-insensitive; no auto-rename is attempted.
type DuplicateCaseNumberError struct {
	CaseNumber string
}

func (e *DuplicateCaseNumberError) Error() string {
	return fmt.Sprintf("case number %q already registered", e.CaseNumber)
}

// NotFoundError reports an update of an unknown record id. Delete treats an
// unknown id as a no-op instead.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("case %q not found", e.ID)
}

// PersistenceError wraps a failure of the backing store during a write. The
// caller surfaces it and the admin resubmits; there is no automatic retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

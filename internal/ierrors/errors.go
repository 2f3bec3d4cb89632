// Package ierrors defines the error taxonomy shared by every component of the
// interview orchestrator. Collaborators return tagged values instead of raising
// exceptions; callers classify failures with Kind and IsRetryable.
package ierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors checked with errors.Is at call sites.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
)

// Kind categorizes a failure for retry logic and logging severity.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindTransientExternal  Kind = "transient_external"
	KindPersistentExternal Kind = "persistent_external"
	KindProtocolViolation  Kind = "protocol_violation"
	KindInternalBug        Kind = "internal_bug"
)

// IsRetryable reports whether an operation that failed with this Kind is
// worth retrying. Only transient external failures are.
func (k Kind) IsRetryable() bool {
	return k == KindTransientExternal
}

// InterviewError wraps a cause with a Kind so callers can branch on failure
// category without parsing error strings.
type InterviewError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *InterviewError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InterviewError) Unwrap() error { return e.Err }

// New builds an InterviewError, annotating the operation that failed.
func New(kind Kind, op string, err error) *InterviewError {
	return &InterviewError{Kind: kind, Op: op, Err: err}
}

// Invalid wraps err as an invalid-input failure.
func Invalid(op string, err error) *InterviewError {
	return New(KindInvalidInput, op, err)
}

// NotFound wraps err as a not-found failure.
func NotFound(op string, err error) *InterviewError {
	return New(KindNotFound, op, err)
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *InterviewError; otherwise it returns KindInternalBug.
func KindOf(err error) Kind {
	var ie *InterviewError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindInternalBug
}

// Package fault defines the typed failure taxonomy shared by the registry,
// token authority and mood ledger. Every operation returns either a typed
// success value or a *Fault; callers branch on the Kind while the Detail
// string stays free-form for diagnostics.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The HTTP layer maps kinds to status codes;
// the domain packages never deal in status codes directly.
type Kind int

const (
	// KindUnknown covers wrapped errors that carry no classification.
	KindUnknown Kind = iota
	// KindNotFound means the entity is absent (or ambiguously absent).
	KindNotFound
	// KindDuplicate means a uniqueness constraint was violated, e.g. a
	// second registration for an existing username.
	KindDuplicate
	// KindInvalidCredentials means a password failed verification.
	KindInvalidCredentials
	// KindForbidden means the presented token is inactive or lacks the
	// capability required for the operation.
	KindForbidden
	// KindInconsistency means a store invariant was found violated, such
	// as two active moods for one user. Distinct from NotFound: it signals
	// corruption that must be surfaced, not absence.
	KindInconsistency
	// KindUpstream means the store or mail collaborator failed. Retryable.
	KindUpstream
	// KindHashing means the hashing primitive itself failed. Fatal.
	KindHashing
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindInconsistency:
		return "inconsistency"
	case KindUpstream:
		return "upstream_failure"
	case KindHashing:
		return "hashing_error"
	default:
		return "unknown"
	}
}

// Fault is the error type returned by all domain operations.
type Fault struct {
	Kind   Kind
	Detail string
	cause  error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Detail, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Fault) Unwrap() error { return f.cause }

// Is reports kind equality so errors.Is(err, &Fault{Kind: k}) works for
// sentinel comparisons without matching detail text.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

// Retryable reports whether the caller may retry the operation.
func (f *Fault) Retryable() bool { return f.Kind == KindUpstream }

// New creates a fault with the given kind and detail.
func New(kind Kind, detail string) *Fault {
	return &Fault{Kind: kind, Detail: detail}
}

// Newf creates a fault with a formatted detail string.
func Newf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault that keeps the underlying error reachable through
// errors.Unwrap, so lower-level sentinels stay matchable.
func Wrap(kind Kind, detail string, err error) *Fault {
	return &Fault{Kind: kind, Detail: detail, cause: err}
}

// NotFound builds a KindNotFound fault.
func NotFound(detail string) *Fault { return New(KindNotFound, detail) }

// Duplicate builds a KindDuplicate fault.
func Duplicate(detail string) *Fault { return New(KindDuplicate, detail) }

// InvalidCredentials builds a KindInvalidCredentials fault.
func InvalidCredentials(detail string) *Fault { return New(KindInvalidCredentials, detail) }

// Forbidden builds a KindForbidden fault.
func Forbidden(detail string) *Fault { return New(KindForbidden, detail) }

// Inconsistency builds a KindInconsistency fault.
func Inconsistency(detail string) *Fault { return New(KindInconsistency, detail) }

// Upstream wraps a store or mail collaborator failure.
func Upstream(detail string, err error) *Fault { return Wrap(KindUpstream, detail, err) }

// Hashing wraps a hashing primitive failure.
func Hashing(detail string, err error) *Fault { return Wrap(KindHashing, detail, err) }

// KindOf extracts the kind from any error. Unclassified errors report
// KindUnknown.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

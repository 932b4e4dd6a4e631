// Package wgerr defines the typed error taxonomy shared by every wenget
// subsystem, so command orchestration can map a failure to an exit code
// and a user-facing line without string-matching error text.
package wgerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy. Each command decides independently
// whether a given Kind aborts a batch or is merely tallied and reported.
type Kind int

const (
	// NoMatch means no asset descriptor scored positively for the host.
	NoMatch Kind = iota
	// NeedsConfirm means a compatible-but-degraded asset exists and the
	// caller must obtain affirmative confirmation (or set auto-yes).
	NeedsConfirm
	// RateLimited means the release provider refused due to rate limiting.
	RateLimited
	// NetworkTransient means a timeout or 5xx response; subject to retry.
	NetworkTransient
	// NetworkFatal means DNS failure, non-rate-limit 4xx, or TLS failure.
	NetworkFatal
	// ArchiveCorrupt means the extractor rejected the downloaded file.
	ArchiveCorrupt
	// ConflictingCommand means every candidate command name is taken.
	ConflictingCommand
	// NotFound means the name is neither installed nor in cache nor glob-matched.
	NotFound
	// StatePersist means the installed registry failed to write; triggers rollback.
	StatePersist
	// Privilege means the operation requires elevation the process lacks.
	Privilege
	// Repairable means JSON corruption was handled by resetting to default.
	Repairable
	// Prerequisite means a precondition the whole command depends on is
	// missing (no buckets configured, prefix unreadable after repair),
	// as opposed to an ordinary per-item lookup failure.
	Prerequisite
)

func (k Kind) String() string {
	switch k {
	case NoMatch:
		return "no_match"
	case NeedsConfirm:
		return "needs_confirm"
	case RateLimited:
		return "rate_limited"
	case NetworkTransient:
		return "network_transient"
	case NetworkFatal:
		return "network_fatal"
	case ArchiveCorrupt:
		return "archive_corrupt"
	case ConflictingCommand:
		return "conflicting_command"
	case NotFound:
		return "not_found"
	case StatePersist:
		return "state_persist"
	case Privilege:
		return "privilege"
	case Repairable:
		return "repairable"
	case Prerequisite:
		return "prerequisite"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried through the system. Fields
// beyond Kind/Msg are optional context used by specific kinds.
type Error struct {
	Kind Kind
	Msg  string
	Item string // the package/asset/bucket name this error concerns, if any
	// Fallback is set when Kind == NeedsConfirm, naming the degraded match kind.
	Fallback string
	// RetryAfter is an advisory wait in seconds, set when Kind == RateLimited.
	RetryAfter int
	Err        error // wrapped underlying error, if any
}

func (e *Error) Error() string {
	if e.Item != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Item, e.Msg, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Item, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithItem returns a copy of e annotated with the item name it concerns.
func (e *Error) WithItem(item string) *Error {
	cp := *e
	cp.Item = item
	return &cp
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, or false if err is not a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

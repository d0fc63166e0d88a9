package shared

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Kind classifies a data-access failure.
type Kind string

const (
	// KindResourceFailure covers manager or repository initialization, I/O and connectivity failures.
	KindResourceFailure Kind = "resource_failure"
	// KindInvalidUsage covers semantically invalid operations against the store (bad pattern, malformed query).
	KindInvalidUsage Kind = "invalid_usage"
	// KindInvalidParameter covers malformed caller input such as a bad repository URL.
	KindInvalidParameter Kind = "invalid_parameter"
	// KindUnsupportedOperation covers operations the store cannot perform, like creating a remote repository.
	KindUnsupportedOperation Kind = "unsupported_operation"
)

// Sentinels for use with [errors.Is]. Any [*Error] with the same kind matches.
var (
	ErrResourceFailure      = &Error{Kind: KindResourceFailure, Message: "resource failure"}
	ErrInvalidUsage         = &Error{Kind: KindInvalidUsage, Message: "invalid usage"}
	ErrInvalidParameter     = &Error{Kind: KindInvalidParameter, Message: "invalid parameter"}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation, Message: "unsupported operation"}
)

// Error is a data-access error tagged with its [Kind] where it originates.
type Error struct {
	Kind    Kind   // Failure classification
	Op      string // Operation that failed, e.g. "registry.manager"
	Message string // Human readable description
	Err     error  // Wrapped cause, may be nil
}

// NewError creates an [Error] without a cause.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an [Error] wrapping cause.
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an [*Error] of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the [Kind] of the first [*Error] in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Translate classifies a foreign error into an [*Error].
//
// Errors that already carry a kind are returned unchanged. Connectivity, file system and SQLite engine failures become
// [KindResourceFailure]; SQLite constraint and syntax errors become [KindInvalidUsage]. Anything else is treated as a
// resource failure, the cause is always preserved.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint, sqlite3.ErrMismatch, sqlite3.ErrRange, sqlite3.ErrError:
			return Wrap(KindInvalidUsage, op, "invalid store operation", err)
		default:
			return Wrap(KindResourceFailure, op, "store engine failure", err)
		}
	}

	var (
		netErr  net.Error
		urlErr  *url.Error
		pathErr *os.PathError
	)
	switch {
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return Wrap(KindResourceFailure, op, "connection failure", err)
	case errors.As(err, &pathErr):
		return Wrap(KindResourceFailure, op, "file system failure", err)
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone):
		return Wrap(KindResourceFailure, op, "connection closed", err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingArgument):
		return Wrap(KindInvalidUsage, op, "invalid usage", err)
	}

	return Wrap(KindResourceFailure, op, "data access failure", err)
}

// Package mcperr defines the adapter's error kinds. Every failure a tool
// call can produce is one of these; the server layer renders them as MCP
// error results.
package mcperr

import (
	"fmt"

	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// Kind classifies an adapter error.
type Kind string

// Error kinds.
const (
	KindMissingArg     Kind = "missing_arg"
	KindInvalidArg     Kind = "invalid_arg"
	KindUnknownTool    Kind = "unknown_tool"
	KindBranchNotFound Kind = "branch_not_found"
	KindAccessDenied   Kind = "access_denied"
	KindStore          Kind = "store"
	KindInternal       Kind = "internal"
)

// Error is a classified adapter error. Store errors keep their engine
// code so callers can match on it.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// MissingArg reports a required argument that was absent or not of the
// expected type.
func MissingArg(name string) *Error {
	return &Error{Kind: KindMissingArg, Message: fmt.Sprintf("missing required argument: %s", name)}
}

// InvalidArg reports an argument that was present but unusable.
func InvalidArg(name, reason string) *Error {
	return &Error{Kind: KindInvalidArg, Message: fmt.Sprintf("invalid argument %q: %s", name, reason)}
}

// UnknownTool reports a dispatch to a name no registry entry claims.
func UnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// BranchNotFound reports a switch to a branch the store does not have.
func BranchNotFound(name string) *Error {
	return &Error{Kind: KindBranchNotFound, Message: fmt.Sprintf("branch not found: %s", name)}
}

// AccessDenied reports a write command rejected on a read-only session.
func AccessDenied(operation string) *Error {
	return &Error{Kind: KindAccessDenied, Message: fmt.Sprintf("access denied: %s requires write access", operation)}
}

// Internal reports an invariant violation inside the adapter itself.
func Internal(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// FromStore passes a store error through verbatim, keeping its code.
// Errors that are already adapter errors are returned unchanged.
func FromStore(err error) *Error {
	if err == nil {
		return nil
	}
	if me, ok := err.(*Error); ok {
		return me
	}
	if se, ok := err.(*stratadb.StoreError); ok {
		return &Error{Kind: KindStore, Code: se.Code, Message: se.Message}
	}
	return &Error{Kind: KindStore, Message: err.Error()}
}

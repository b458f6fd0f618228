// Package errs defines the exhaustive error taxonomy used across the
// automation engine (see spec §7). Every public operation signals failure
// through this type rather than a host-runtime exception, since platform
// backends may cross FFI/language boundaries where exceptions don't survive.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the wire error kinds from the error taxonomy.
type Kind string

const (
	KindElementNotFound     Kind = "ElementNotFound"
	KindInvalidSelector     Kind = "InvalidSelector"
	KindAmbiguousSelector   Kind = "AmbiguousSelector"
	KindStaleReference      Kind = "StaleReference"
	KindTimeout             Kind = "Timeout"
	KindPermissionDenied    Kind = "PermissionDenied"
	KindPlatformError       Kind = "PlatformError"
	KindUnsupportedOp       Kind = "UnsupportedOperation"
	KindUnsupportedPlatform Kind = "UnsupportedPlatform"
	KindInvalidArgument     Kind = "InvalidArgument"
	KindUnresolvedVariable  Kind = "UnresolvedVariable"
	KindUnknownStepRef      Kind = "UnknownStepReference"
	KindInfiniteLoop        Kind = "InfiniteLoop"
	KindOutputParserError   Kind = "OutputParserError"
	KindWorkflowLocked      Kind = "WorkflowLocked"
	KindServerBusy          Kind = "ServerBusy"
	KindCancelled           Kind = "Cancelled"
	KindInternalError       Kind = "InternalError"
)

// transient reports whether a kind is safe to retry inside locators/actions
// (spec §7 propagation policy: retries consume ElementNotFound, StaleReference
// and Timeout; everything else short-circuits).
func (k Kind) transient() bool {
	switch k {
	case KindElementNotFound, KindStaleReference, KindTimeout:
		return true
	default:
		return false
	}
}

// Transient reports whether err (or a wrapped *Error within it) is a
// transient kind eligible for retry.
func Transient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.transient()
	}
	return false
}

// Error is the structured error carried across the engine boundary. It maps
// 1:1 onto the JSON-RPC error "data" shape described in spec §7.
type Error struct {
	Kind    Kind
	Message string

	// Data mirrors the user-visible failure fields: failing tool, attempted
	// selector, resolved variables, last known tree snippet, suggestions.
	Tool          string
	Selector      string
	Variables     map[string]interface{}
	TreeSnippet   string
	Suggestions   []string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a bare *Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause, preserving it for
// errors.Unwrap/errors.Is chains.
func Wrap(cause error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithTool annotates the error with the failing tool name.
func (e *Error) WithTool(tool string) *Error {
	e.Tool = tool
	return e
}

// WithSelector annotates the error with the selector string that was
// being resolved when the failure occurred.
func (e *Error) WithSelector(sel string) *Error {
	e.Selector = sel
	return e
}

// WithVariables annotates the error with the resolved variables in scope.
func (e *Error) WithVariables(vars map[string]interface{}) *Error {
	e.Variables = vars
	return e
}

// WithTreeSnippet attaches the last known tree snapshot, if one had been
// built before the failure.
func (e *Error) WithTreeSnippet(snippet string) *Error {
	e.TreeSnippet = snippet
	return e
}

// WithSuggestions attaches actionable follow-ups, e.g. "try
// alternative_selectors", "element may be off-screen - scroll first".
func (e *Error) WithSuggestions(s ...string) *Error {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// Is supports errors.Is comparisons against sentinel *Error values that only
// set Kind (the common case: errors.Is(err, errs.New(errs.KindTimeout, ""))).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Code returns a JSON-RPC-ish numeric code bucket for the kind, used by the
// tool server when translating to a wire error response.
func (k Kind) Code() int {
	switch k {
	case KindInvalidSelector, KindInvalidArgument, KindUnresolvedVariable, KindUnknownStepRef:
		return -32602 // Invalid params
	case KindServerBusy:
		return -32000
	case KindCancelled:
		return -32001
	case KindTimeout:
		return -32002
	case KindElementNotFound:
		return -32003
	case KindAmbiguousSelector:
		return -32004
	case KindStaleReference:
		return -32005
	case KindPermissionDenied:
		return -32006
	case KindUnsupportedOp, KindUnsupportedPlatform:
		return -32007
	case KindInfiniteLoop:
		return -32008
	case KindOutputParserError:
		return -32009
	case KindWorkflowLocked:
		return -32010
	case KindPlatformError:
		return -32011
	default:
		return -32603 // Internal error
	}
}

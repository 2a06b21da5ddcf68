package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a command did not complete.
type FailureKind string

const (
	// KindNone marks a successful result.
	KindNone FailureKind = ""

	// KindParse means no intent rule matched the utterance.
	KindParse FailureKind = "parse"

	// KindResolution means the target is not whitelisted while enforcement is on.
	KindResolution FailureKind = "resolution"

	// KindTransport means the daemon was unreachable, timed out or answered garbage.
	KindTransport FailureKind = "transport"

	// KindOperation means the daemon rejected a well-formed request.
	KindOperation FailureKind = "operation"

	// KindUnsupported means the selected driver lacks the requested capability.
	KindUnsupported FailureKind = "unsupported"
)

// Sentinel errors, one per failure kind.
var (
	ErrParse       = errors.New("command not recognized")
	ErrResolution  = errors.New("target not in whitelist")
	ErrTransport   = errors.New("daemon transport failure")
	ErrOperation   = errors.New("daemon operation failed")
	ErrUnsupported = errors.New("operation not supported by driver")
)

var kindErrors = map[FailureKind]error{
	KindParse:       ErrParse,
	KindResolution:  ErrResolution,
	KindTransport:   ErrTransport,
	KindOperation:   ErrOperation,
	KindUnsupported: ErrUnsupported,
}

// Error wraps a kind sentinel with the human-readable diagnostic.
type Error struct {
	Kind    FailureKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return kindErrors[e.Kind].Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return kindErrors[e.Kind]
}

// NewError creates a typed pipeline error.
func NewError(kind FailureKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ResolutionError reports a target rejected by the whitelist.
type ResolutionError struct {
	Target      string
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("chat %q is not in the whitelist; set SAYDO_DISABLE_WHITELIST=1 to allow any chat", e.Target)
}

func (e *ResolutionError) Unwrap() error {
	return ErrResolution
}

// KindOf extracts the failure kind carried by err.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	for kind, sentinel := range kindErrors {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindOperation
}

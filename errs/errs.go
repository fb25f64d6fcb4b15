// Package errs defines the pipeline's error taxonomy (spec §7): a small set
// of kinds, not a type per failure site, so every stage can classify a
// failure the same way regardless of where it originated.
package errs

import "fmt"

// Kind classifies a pipeline failure.
type Kind string

const (
	// InvalidArgument: a transition duration <= 0 or non-finite, an unknown
	// transition kind, a malformed hex colour. Raised at call site.
	InvalidArgument Kind = "InvalidArgument"
	// SchemaViolation: the finalized timeline fails validation. Fatal;
	// aborts the pipeline before any render attempt.
	SchemaViolation Kind = "SchemaViolation"
	// DriverFailure: a navigation, selector resolution, or input dispatch
	// failed. Carries the action name, URL, and selector.
	DriverFailure Kind = "DriverFailure"
	// NarrationMismatch: the recorded narration count differs from the
	// preprocessed count. Fatal.
	NarrationMismatch Kind = "NarrationMismatch"
	// TtsFailure: TTS synthesis or duration probing failed. Downgradeable
	// when the caller permits continuing without audio.
	TtsFailure Kind = "TtsFailure"
	// RenderFailure: encoder or frame resolver error during render. Fatal.
	RenderFailure Kind = "RenderFailure"
)

// Error wraps an underlying cause with a Kind and, for DriverFailure, the
// action/url/selector context the spec requires it to carry.
type Error struct {
	Kind     Kind
	Action   string
	URL      string
	Selector string
	Reason   string
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == DriverFailure && (e.Action != "" || e.Selector != "" || e.URL != ""):
		return fmt.Sprintf("%s: action=%s url=%s selector=%s: %s", e.Kind, e.Action, e.URL, e.Selector, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain Error of the given kind.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an Error of the given kind chaining cause.
func Wrap(kind Kind, cause error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// WrapDriver builds a DriverFailure carrying the action/url/selector the
// spec requires for this kind.
func WrapDriver(cause error, action, url, selector string) *Error {
	return &Error{
		Kind:     DriverFailure,
		Action:   action,
		URL:      url,
		Selector: selector,
		Reason:   cause.Error(),
		Cause:    cause,
	}
}

// Is reports whether err, or an error in its Unwrap chain, is an *Error of
// the given kind. Kind itself is not an error, so kind checks go through
// this function rather than errors.Is.
func Is(err error, kind Kind) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

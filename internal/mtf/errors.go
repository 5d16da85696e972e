package mtf

import (
	"errors"
	"fmt"
)

var (
	ErrImport  = errors.New("import error")
	ErrMessage = errors.New("message error")
	ErrRecord  = errors.New("record error")
)

// Error wraps a structural failure. Kind is one of the sentinel errors above
// so callers can branch with errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func importf(format string, args ...any) error {
	return &Error{Kind: ErrImport, Msg: fmt.Sprintf(format, args...)}
}

func messagef(format string, args ...any) error {
	return &Error{Kind: ErrMessage, Msg: fmt.Sprintf(format, args...)}
}

func recordf(format string, args ...any) error {
	return &Error{Kind: ErrRecord, Msg: fmt.Sprintf(format, args...)}
}

// NewImportError builds an ErrImport-kind error. It is used by the parser,
// which lives outside this package.
func NewImportError(format string, args ...any) error {
	return importf(format, args...)
}

package template

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateLoad marks a template that could not be located or read.
	ErrTemplateLoad = errors.New("template: load failed")
	// ErrTemplateSyntax marks a template whose source failed to compile.
	ErrTemplateSyntax = errors.New("template: syntax error")
	// ErrTemplateRuntime marks a failure while evaluating a compiled template.
	ErrTemplateRuntime = errors.New("template: runtime error")
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindLoad    ErrorKind = "load"
	KindSyntax  ErrorKind = "syntax"
	KindRuntime ErrorKind = "runtime"
)

// Error wraps an engine failure with the template it concerns.
type Error struct {
	Kind     ErrorKind
	Template string
	Err      error
}

// NewError builds an Error, returning nil when err is nil.
func NewError(kind ErrorKind, name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Template: strings.TrimSpace(name), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("template %s error", e.Kind)
	if e.Template != "" {
		msg += fmt.Sprintf(" in %q", e.Template)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching the error kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindLoad:
		return target == ErrTemplateLoad
	case KindSyntax:
		return target == ErrTemplateSyntax
	case KindRuntime:
		return target == ErrTemplateRuntime
	default:
		return false
	}
}

// KindOf extracts the failure kind from err, reporting false when err did not
// originate from a template engine.
func KindOf(err error) (ErrorKind, bool) {
	var tplErr *Error
	if errors.As(err, &tplErr) && tplErr != nil {
		return tplErr.Kind, true
	}
	return "", false
}

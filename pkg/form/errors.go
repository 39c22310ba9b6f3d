package form

import (
	"errors"
	"net/http"
	"strings"
)

// DefaultFailureMessage is shown when Business fails without a user message.
const DefaultFailureMessage = "The form could not be processed. Please try again."

// ErrNoHooks is returned by Run when hooks are missing.
var ErrNoHooks = errors.New("form: hooks are required")

// UserError is a Business failure carrying a message safe to show.
type UserError struct {
	Message string
	Err     error
}

// Failure wraps err with a message that is shown on the re-rendered form.
func Failure(message string, err error) error {
	return &UserError{Message: strings.TrimSpace(message), Err: err}
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// userMessage picks the message displayed for a Business failure.
func userMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) && userErr != nil && userErr.Message != "" {
		return userErr.Message
	}
	return DefaultFailureMessage
}

// HTTPError is an error that carries a response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the HTTP status reported for it.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode returns the status, defaulting to 500.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func statusOf(err error, fallback int) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if code := httpErr.StatusCode(); code > 0 {
			return code
		}
	}
	return fallback
}

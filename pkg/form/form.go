package form

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-formview/pkg/metrics"
	"github.com/goliatone/go-formview/pkg/request"
	"github.com/goliatone/go-formview/pkg/view"
)

// Parameter names Run publishes on the current view before it renders.
// errors, field_errors, status and hidden are reserved: publish overwrites any
// parameter a hook sets under one of these names, so forms must not expose a
// field or set a parameter called errors, field_errors, status or hidden.
const (
	ParamErrors      = "errors"
	ParamFieldErrors = "field_errors"
	ParamStatus      = "status"
)

// Hooks is implemented by each concrete form.
type Hooks interface {
	// IsValid inspects the submitted input. Implementations record
	// human-readable messages with AddError/AddFieldError when returning
	// false.
	IsValid(ctx context.Context, f *Form) bool
	// Business runs for valid submissions only. It typically sets a status
	// message, swaps the view, or redirects.
	Business(ctx context.Context, f *Form) error
}

// HookFuncs adapts two functions to Hooks. A nil Valid accepts every
// submission; a nil Process does nothing.
type HookFuncs struct {
	Valid   func(ctx context.Context, f *Form) bool
	Process func(ctx context.Context, f *Form) error
}

// IsValid implements Hooks.
func (h HookFuncs) IsValid(ctx context.Context, f *Form) bool {
	if h.Valid == nil {
		return true
	}
	return h.Valid(ctx, f)
}

// Business implements Hooks.
func (h HookFuncs) Business(ctx context.Context, f *Form) error {
	if h.Process == nil {
		return nil
	}
	return h.Process(ctx, f)
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics sets the lifecycle recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(f *Form) {
		if rec != nil {
			f.metrics = rec
		}
	}
}

// WithRedirector sets where RedirectTo emits redirects.
func WithRedirector(r view.Redirector) Option {
	return func(f *Form) {
		f.redirector = r
	}
}

// WithView sets the initial current view.
func WithView(v *view.View) Option {
	return func(f *Form) {
		f.current = v
	}
}

// Form is the per-request lifecycle state: the request, the current view
// (possibly absent), accumulated messages and a status line.
type Form struct {
	req         *request.Context
	current     *view.View
	errors      []string
	fieldErrors map[string][]string
	exposed     []string
	hidden      map[string]string
	status      string
	logger      *slog.Logger
	metrics     metrics.Recorder
	redirector  view.Redirector
}

// New returns a Form for req.
func New(req *request.Context, opts ...Option) *Form {
	if req == nil {
		req = request.New(http.MethodGet, nil)
	}
	f := &Form{
		req:         req,
		fieldErrors: make(map[string][]string),
		logger:      slog.Default(),
		metrics:     metrics.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Request returns the request context.
func (f *Form) Request() *request.Context { return f.req }

// Logger returns the form logger.
func (f *Form) Logger() *slog.Logger { return f.logger }

// View returns the current view and whether one is set.
func (f *Form) View() (*view.View, bool) {
	return f.current, f.current != nil
}

// SetView swaps the current view. Passing nil leaves the form without a view,
// in which case Run renders nothing.
func (f *Form) SetView(v *view.View) { f.current = v }

// ClearView removes the current view.
func (f *Form) ClearView() { f.current = nil }

// NewView builds a view wired to this form's request globals and logger.
func (f *Form) NewView(templateID string, opts ...view.Option) (*view.View, error) {
	base := []view.Option{
		view.WithAmbient(f.req),
		view.WithLogger(f.logger),
	}
	return view.New(templateID, append(base, opts...)...)
}

// AddError records a form level message.
func (f *Form) AddError(message string) {
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		f.errors = append(f.errors, trimmed)
	}
}

// AddFieldError records a message against one field.
func (f *Form) AddFieldError(field, message string) {
	field = strings.TrimSpace(field)
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	if field == "" {
		f.AddError(message)
		return
	}
	f.fieldErrors[field] = append(f.fieldErrors[field], message)
}

// Errors returns the form level messages.
func (f *Form) Errors() []string { return append([]string(nil), f.errors...) }

// FieldErrors returns the messages recorded for field.
func (f *Form) FieldErrors(field string) []string {
	return append([]string(nil), f.fieldErrors[field]...)
}

// HasErrors reports whether any form or field message was recorded.
func (f *Form) HasErrors() bool {
	return len(f.errors) > 0 || len(f.fieldErrors) > 0
}

// SetStatus sets the status message.
func (f *Form) SetStatus(message string) { f.status = message }

// Status returns the status message.
func (f *Form) Status() string { return f.status }

// IsFormSubmission reports whether the request is a submission.
func (f *Form) IsFormSubmission() bool { return f.req.IsSubmission() }

// IsEmptyPostField reports whether the submitted field is missing or blank.
func (f *Form) IsEmptyPostField(name string) bool { return f.req.IsEmptyField(name) }

// Field returns the submitted value of name, or "".
func (f *Form) Field(name string) string {
	value, _ := f.req.Field(name)
	return value
}

// ExposeFields publishes the named submitted fields, with their errors, as
// field parameters on whatever view is current when Run displays.
func (f *Form) ExposeFields(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || containsString(f.exposed, name) {
			continue
		}
		f.exposed = append(f.exposed, name)
	}
}

// RedirectTo emits a redirect through the form's redirector and unwinds the
// calling hook. Code after it does not run.
func (f *Form) RedirectTo(location string, query map[string]string) {
	view.RedirectTo(f.redirector, location, query)
}

// publish writes the form state onto v.
func (f *Form) publish(v *view.View) {
	fieldErrors := make(map[string]any, len(f.fieldErrors))
	for name, messages := range f.fieldErrors {
		fieldErrors[name] = append([]string(nil), messages...)
	}
	v.SetParameter(view.Param(ParamErrors, append([]string{}, f.errors...)))
	v.SetParameter(view.Param(ParamFieldErrors, fieldErrors))
	v.SetParameter(view.Param(ParamStatus, f.status))
	v.SetParameter(view.Param(ParamHidden, f.HiddenFields()))

	for _, name := range f.exposed {
		v.SetParameter(view.FieldParam(view.Field{
			Name:   name,
			Value:  f.Field(name),
			Errors: f.fieldErrors[name],
		}))
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

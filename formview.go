// Package formview re-exports the pieces most callers need to build a form:
// views, the lifecycle runner and the HTTP handler.
package formview

import (
	"context"
	"io"
	"net/http"

	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/request"
	"github.com/goliatone/go-formview/pkg/view"
)

// Form is the per-request lifecycle state.
type Form = form.Form

// Hooks is implemented by concrete forms.
type Hooks = form.Hooks

// HookFuncs adapts plain functions to Hooks.
type HookFuncs = form.HookFuncs

// Factory prepares a Form per request.
type Factory = form.Factory

// Result describes one lifecycle run.
type Result = form.Result

// View renders one template with named parameters.
type View = view.View

// Parameter is a named template value.
type Parameter = view.Parameter

// Field is a submitted field as templates see it.
type Field = view.Field

// Param builds a plain value parameter.
func Param(name string, value any) Parameter { return view.Param(name, value) }

// FieldParam builds a submitted field parameter.
func FieldParam(field Field) Parameter { return view.FieldParam(field) }

// NewView builds a view for templateID, reading sources from "templates" and
// recording compiled templates in "templates_c" unless options say otherwise.
func NewView(templateID string, opts ...view.Option) (*View, error) {
	return view.New(templateID, opts...)
}

// NewForm returns a Form for req.
func NewForm(req *request.Context, opts ...form.Option) *Form {
	return form.New(req, opts...)
}

// Run executes one form lifecycle, rendering into w.
func Run(ctx context.Context, f *Form, hooks Hooks, w io.Writer) (Result, error) {
	return form.Run(ctx, f, hooks, w)
}

// NewHandler serves the form built by factory over HTTP.
func NewHandler(factory Factory, opts ...form.OptionFn) http.Handler {
	return form.Handler(factory, opts...)
}

// RedirectTo emits a redirect through out and unwinds the caller.
func RedirectTo(out view.Redirector, location string, query map[string]string) {
	view.RedirectTo(out, location, query)
}

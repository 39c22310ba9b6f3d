package form

import (
	"context"
	"io"

	"github.com/goliatone/go-formview/pkg/render/template"
	"github.com/goliatone/go-formview/pkg/view"
)

// State classifies a request.
type State int

const (
	// StateInitial is a request showing the form (GET).
	StateInitial State = iota
	// StateSubmission is a request submitting the form (POST).
	StateSubmission
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateSubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Outcome is how a lifecycle run ended.
type Outcome int

const (
	// OutcomeDisplayed means the current view was rendered.
	OutcomeDisplayed Outcome = iota
	// OutcomeNoView means no view was set, so nothing was rendered.
	OutcomeNoView
	// OutcomeRedirected means a hook redirected and rendering was skipped.
	OutcomeRedirected
	// OutcomeRenderFailed means the current view failed to render.
	OutcomeRenderFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisplayed:
		return "displayed"
	case OutcomeNoView:
		return "no_view"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeRenderFailed:
		return "render_failed"
	default:
		return "unknown"
	}
}

// Result describes one lifecycle run.
type Result struct {
	State       State
	Valid       bool
	BusinessRan bool
	// BusinessErr is the error Business returned. The form was re-rendered
	// with the pre-business parameters and a failure message.
	BusinessErr error
	Outcome     Outcome
	Redirect    *view.Redirect
}

type viewSnapshot struct {
	current     *view.View
	params      []view.Parameter
	status      string
	errors      []string
	fieldErrors map[string][]string
}

// Run executes one request lifecycle and renders into w. The returned error
// is non-nil only when rendering failed; Business failures are reported in
// Result.BusinessErr.
func Run(ctx context.Context, f *Form, hooks Hooks, w io.Writer) (Result, error) {
	if f == nil || hooks == nil {
		return Result{}, ErrNoHooks
	}

	result := Result{State: StateInitial}
	if f.IsFormSubmission() {
		result.State = StateSubmission
	}

	redirect := view.Catch(func() {
		if result.State != StateSubmission {
			return
		}
		result.Valid = hooks.IsValid(ctx, f)
		if !result.Valid {
			return
		}

		snapshot := f.snapshot()
		result.BusinessRan = true
		if err := hooks.Business(ctx, f); err != nil {
			f.restore(snapshot)
			f.AddError(userMessage(err))
			result.BusinessErr = err
			f.logger.Warn("form business failed", "error", err)
		}
	})

	if redirect != nil {
		result.Outcome = OutcomeRedirected
		result.Redirect = redirect
		f.observe(result)
		return result, nil
	}

	current, ok := f.View()
	if !ok {
		result.Outcome = OutcomeNoView
		f.logger.Debug("form has no view, skipping render", "state", result.State.String())
		f.observe(result)
		return result, nil
	}

	f.publish(current)
	if err := current.Display(w); err != nil {
		result.Outcome = OutcomeRenderFailed
		kind, _ := template.KindOf(err)
		f.metrics.ObserveRenderError(string(kind))
		f.observe(result)
		return result, err
	}

	result.Outcome = OutcomeDisplayed
	f.observe(result)
	return result, nil
}

func (f *Form) snapshot() viewSnapshot {
	s := viewSnapshot{
		current:     f.current,
		status:      f.status,
		errors:      append([]string(nil), f.errors...),
		fieldErrors: make(map[string][]string, len(f.fieldErrors)),
	}
	for name, messages := range f.fieldErrors {
		s.fieldErrors[name] = append([]string(nil), messages...)
	}
	if f.current != nil {
		s.params = f.current.Parameters()
	}
	return s
}

// restore rolls the view and messages back to their pre-business state so
// anything an abandoned business step set is not rendered.
func (f *Form) restore(s viewSnapshot) {
	f.current = s.current
	f.status = s.status
	f.errors = s.errors
	f.fieldErrors = s.fieldErrors
	if s.current != nil {
		s.current.ResetParameters(s.params)
	}
}

func (f *Form) observe(result Result) {
	f.metrics.ObserveLifecycle(result.State.String(), result.Outcome.String())
	f.logger.Debug("form lifecycle finished",
		"state", result.State.String(),
		"outcome", result.Outcome.String(),
		"valid", result.Valid,
	)
}

package form

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formview/pkg/request"
	"github.com/goliatone/go-formview/pkg/view"
)

// Factory prepares a fresh Form for one request (typically by setting its
// initial view) and returns the hooks that process it.
type Factory func(ctx context.Context, f *Form) (Hooks, error)

// Handler builds a net/http handler running factory's form on every request.
func Handler(factory Factory, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(factory, NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
func HandlerWithOptions(factory Factory, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodPost:
		default:
			w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodHead, http.MethodPost}, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if factory == nil {
			writeError(w, StatusError{Code: http.StatusInternalServerError})
			return
		}

		requestID := strings.TrimSpace(r.Header.Get(opts.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(opts.RequestIDHeader, requestID)
		logger := opts.Logger.With("request_id", requestID, "method", r.Method, "path", r.URL.Path)

		rc, err := request.FromHTTP(r, request.WithSession(opts.Session), request.WithEnv(opts.Env))
		if err != nil {
			logger.Warn("form request rejected", "error", err)
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
			return
		}

		f := New(rc,
			WithLogger(logger),
			WithMetrics(opts.Metrics),
			WithRedirector(view.HTTPRedirector(w, r, opts.RedirectCode)),
		)
		hooks, err := factory(r.Context(), f)
		if err != nil {
			logger.Error("form setup failed", "error", err)
			writeError(w, err)
			return
		}

		var buf bytes.Buffer
		result, err := Run(r.Context(), f, hooks, &buf)
		if err != nil {
			writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
			return
		}

		switch result.Outcome {
		case OutcomeRedirected:
			return
		case OutcomeNoView:
			w.WriteHeader(http.StatusNoContent)
			return
		}

		code := http.StatusOK
		switch {
		case result.BusinessErr != nil:
			code = statusOf(result.BusinessErr, http.StatusUnprocessableEntity)
		case result.State == StateSubmission && !result.Valid:
			code = opts.InvalidCode
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = buf.WriteTo(w)
	})
}

func writeError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := statusOf(err, http.StatusInternalServerError)
	http.Error(w, http.StatusText(code), code)
}

package form

import (
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formview/pkg/metrics"
	"github.com/goliatone/go-formview/pkg/request"
)

// Options configures the HTTP handler.
type Options struct {
	RoutePath       string
	RedirectCode    int
	InvalidCode     int
	RequestIDHeader string
	Logger          *slog.Logger
	Metrics         metrics.Recorder
	Session         request.SessionFunc
	Env             map[string]string
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions returns the handler defaults.
func DefaultOptions() Options {
	return Options{
		RoutePath:       "/",
		RedirectCode:    http.StatusFound,
		InvalidCode:     http.StatusUnprocessableEntity,
		RequestIDHeader: "X-Request-ID",
	}
}

// NewOptions applies fns over the defaults and fills anything left unset.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/"
	}
	if opts.RedirectCode < 300 || opts.RedirectCode > 399 {
		opts.RedirectCode = http.StatusFound
	}
	if opts.InvalidCode <= 0 {
		opts.InvalidCode = http.StatusUnprocessableEntity
	}
	if opts.RequestIDHeader == "" {
		opts.RequestIDHeader = "X-Request-ID"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Env != nil {
		env := make(map[string]string, len(opts.Env))
		for key, value := range opts.Env {
			env[key] = value
		}
		opts.Env = env
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithRedirectCode(code int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RedirectCode = code
	}
}

// WithInvalidCode sets the status used when a submission fails validation.
func WithInvalidCode(code int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.InvalidCode = code
	}
}

func WithRequestIDHeader(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RequestIDHeader = name
	}
}

func WithHandlerLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithHandlerMetrics(rec metrics.Recorder) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Metrics = rec
	}
}

func WithSession(fn request.SessionFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Session = fn
	}
}

func WithEnv(env map[string]string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Env = env
	}
}

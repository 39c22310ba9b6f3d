package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/metrics"
	"github.com/goliatone/go-formview/pkg/request"
	"github.com/goliatone/go-formview/pkg/view"
)

// Options configures Run.
type Options struct {
	Driver  PromptDriver
	Prompts []Prompt
	Out     io.Writer
	ErrOut  io.Writer
	Logger  *slog.Logger
	Metrics metrics.Recorder
	Env     map[string]string
	Session map[string]any
}

// Option mutates Options.
type Option func(*Options)

func WithDriver(driver PromptDriver) Option {
	return func(o *Options) { o.Driver = driver }
}

// WithPrompts sets the fields asked for. Without prompts Run displays the
// form as an initial request.
func WithPrompts(prompts ...Prompt) Option {
	return func(o *Options) { o.Prompts = append(o.Prompts, prompts...) }
}

func WithOutput(out, errOut io.Writer) Option {
	return func(o *Options) {
		o.Out = out
		o.ErrOut = errOut
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithMetrics(rec metrics.Recorder) Option {
	return func(o *Options) { o.Metrics = rec }
}

func WithEnv(env map[string]string) Option {
	return func(o *Options) { o.Env = env }
}

// WithSession exposes data as the session global.
func WithSession(data map[string]any) Option {
	return func(o *Options) { o.Session = data }
}

// Run collects answers, runs one lifecycle of the form built by factory and
// writes the rendered view to the output. Redirects print as
// "redirect: <location>" and render failures as "error: <message>".
func Run(ctx context.Context, factory form.Factory, opts ...Option) (form.Result, error) {
	if factory == nil {
		return form.Result{}, ErrNoFactory
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ErrOut == nil {
		cfg.ErrOut = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop()
	}

	method := http.MethodGet
	var fields url.Values
	if len(cfg.Prompts) > 0 {
		if cfg.Driver == nil {
			cfg.Driver = NewSurveyDriver(nil, nil, nil)
		}
		values, err := Collect(ctx, cfg.Driver, cfg.Prompts)
		if err != nil {
			return form.Result{}, err
		}
		fields = values
		method = request.SubmissionMethod
	}

	req := request.New(method, fields)
	req.Path = "terminal"
	req.Env = cfg.Env
	if cfg.Session != nil {
		req.Session = cfg.Session
		req.HasSession = true
	}

	out := cfg.Out
	f := form.New(req,
		form.WithLogger(cfg.Logger.With("transport", "terminal")),
		form.WithMetrics(cfg.Metrics),
		form.WithRedirector(view.RedirectorFunc(func(location string) {
			fmt.Fprintf(out, "redirect: %s\n", location)
		})),
	)

	hooks, err := factory(ctx, f)
	if err != nil {
		fmt.Fprintf(cfg.ErrOut, "error: %v\n", err)
		return form.Result{}, err
	}

	result, err := form.Run(ctx, f, hooks, out)
	if err != nil {
		fmt.Fprintf(cfg.ErrOut, "error: %v\n", err)
		return result, err
	}
	return result, nil
}

package request

import (
	"fmt"
	"net/http"
	"strings"
)

// SessionFunc loads session data for r. Returning ok=false means the request
// has no session, which is not an error.
type SessionFunc func(r *http.Request) (data map[string]any, ok bool)

// Option configures FromHTTP.
type Option func(*options)

type options struct {
	session   SessionFunc
	env       map[string]string
	maxMemory int64
}

// WithSession sets the session loader.
func WithSession(fn SessionFunc) Option {
	return func(o *options) {
		o.session = fn
	}
}

// WithEnv copies env entries into the request environment.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		if len(env) == 0 {
			return
		}
		if o.env == nil {
			o.env = make(map[string]string, len(env))
		}
		for key, value := range env {
			o.env[key] = value
		}
	}
}

// WithMaxMemory bounds multipart parsing memory.
func WithMaxMemory(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMemory = n
		}
	}
}

// FromHTTP builds a Context from r. Submitted fields come from the request
// body for submissions and from the query string otherwise.
func FromHTTP(r *http.Request, opts ...Option) (*Context, error) {
	if r == nil {
		return nil, fmt.Errorf("request: nil http request")
	}
	cfg := options{maxMemory: 10 << 20}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctx := &Context{
		Method:     strings.ToUpper(r.Method),
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		Query:      cloneValues(r.URL.Query()),
		Header:     r.Header.Clone(),
		Env:        cfg.env,
	}

	if ctx.IsSubmission() {
		if err := parseBody(r, cfg.maxMemory); err != nil {
			return nil, fmt.Errorf("request: parse form: %w", err)
		}
		ctx.Fields = cloneValues(r.PostForm)
	} else {
		ctx.Fields = cloneValues(ctx.Query)
	}

	if cfg.session != nil {
		if data, ok := cfg.session(r); ok {
			ctx.Session = data
			ctx.HasSession = true
		}
	}
	return ctx, nil
}

func parseBody(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

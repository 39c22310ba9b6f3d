package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formview/pkg/render/template"
	"github.com/goliatone/go-formview/pkg/render/template/gotemplate"
)

const (
	// DefaultSourceDir is where template sources are read from.
	DefaultSourceDir = "templates"
	// DefaultCacheDir is where the engine records compiled templates.
	DefaultCacheDir = "templates_c"

	// GlobalServer names the request environment global.
	GlobalServer = "server"
	// GlobalSession names the session global, present only with a session.
	GlobalSession = "session"
)

// Ambient supplies the read-only request data injected as template globals.
// *request.Context satisfies it.
type Ambient interface {
	ServerData() map[string]any
	SessionData() (map[string]any, bool)
}

// Option configures a View.
type Option func(*View)

// WithSourceDir sets the template source directory.
func WithSourceDir(dir string) Option {
	return func(v *View) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			v.sourceDir = trimmed
		}
	}
}

// WithCacheDir sets the compiled template cache directory.
func WithCacheDir(dir string) Option {
	return func(v *View) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			v.cacheDir = trimmed
		}
	}
}

// WithParameters seeds the view with initial parameters.
func WithParameters(params ...Parameter) Option {
	return func(v *View) {
		v.initial = append(v.initial, params...)
	}
}

// WithEngine renders through engine instead of building one from the
// source and cache dirs. Use it to share compiled templates across requests.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(v *View) {
		if engine != nil {
			v.engine = engine
		}
	}
}

// WithAmbient sets the source of the server and session globals.
func WithAmbient(ambient Ambient) Option {
	return func(v *View) {
		v.ambient = ambient
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// View renders one template with an ordered set of named parameters.
type View struct {
	template  string
	sourceDir string
	cacheDir  string
	params    []Parameter
	initial   []Parameter
	engine    template.TemplateRenderer
	ambient   Ambient
	logger    *slog.Logger
}

// New builds a View for templateID. Without WithEngine it creates a pongo2
// engine reading sourceDir, recording compiled templates in cacheDir and
// recompiling sources that changed on disk.
func New(templateID string, opts ...Option) (*View, error) {
	name := strings.TrimSpace(templateID)
	if name == "" {
		return nil, errors.New("view: template id is required")
	}

	v := &View{
		template:  name,
		sourceDir: DefaultSourceDir,
		cacheDir:  DefaultCacheDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.engine == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(v.sourceDir),
			gotemplate.WithCacheDir(v.cacheDir),
			gotemplate.WithAutoReload(true),
			gotemplate.WithLogger(v.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("view: create engine: %w", err)
		}
		v.engine = engine
	}

	for _, p := range v.initial {
		v.SetParameter(p)
	}
	v.initial = nil
	return v, nil
}

// TemplateName returns the template identifier.
func (v *View) TemplateName() string { return v.template }

// SourceDir returns the template source directory.
func (v *View) SourceDir() string { return v.sourceDir }

// CacheDir returns the compiled template cache directory.
func (v *View) CacheDir() string { return v.cacheDir }

// Parameters returns a copy of the parameters in order.
func (v *View) Parameters() []Parameter {
	return append([]Parameter(nil), v.params...)
}

// Parameter looks up a parameter by name.
func (v *View) Parameter(name string) (Parameter, bool) {
	for _, p := range v.params {
		if p.name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// SetParameter replaces the parameter with the same name, or appends it.
func (v *View) SetParameter(param Parameter) {
	for i := range v.params {
		if v.params[i].name == param.name {
			v.params[i] = param
			return
		}
	}
	v.params = append(v.params, param)
}

// ResetParameters replaces the whole parameter list.
func (v *View) ResetParameters(params []Parameter) {
	v.params = nil
	for _, p := range params {
		v.SetParameter(p)
	}
}

// Bindings returns the name -> value mapping the template is rendered with.
// The server and session globals override parameters with the same name.
func (v *View) Bindings() map[string]any {
	bindings := make(map[string]any, len(v.params)+2)
	for _, p := range v.params {
		bindings[p.name] = p.Exposed()
	}
	if v.ambient != nil {
		bindings[GlobalServer] = v.ambient.ServerData()
		if session, ok := v.ambient.SessionData(); ok {
			bindings[GlobalSession] = session
		}
	}
	return bindings
}

// Display renders the template into w. Engine failures are logged and
// returned as *template.Error; w is untouched when rendering fails.
func (v *View) Display(w io.Writer) error {
	var buf bytes.Buffer
	if _, err := v.engine.RenderTemplate(v.template, v.Bindings(), &buf); err != nil {
		if _, ok := template.KindOf(err); !ok {
			err = template.NewError(template.KindRuntime, v.template, err)
		}
		kind, _ := template.KindOf(err)
		v.logger.Error("template render failed",
			"template", v.template,
			"kind", string(kind),
			"error", err,
		)
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("view: write output: %w", err)
	}
	return nil
}

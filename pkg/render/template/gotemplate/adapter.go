package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formview/pkg/render/template"
)

// Option configures the pongo2 engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	cacheDir   string
	autoReload bool
	watch      bool
	templateFn map[string]any
	globalData map[string]any
	logger     *slog.Logger
}

// WithBaseDir configures the engine to load templates from a directory on
// disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the engine to load templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension (".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithCacheDir records compiled templates in a manifest stored under dir.
// The directory is created on demand.
func WithCacheDir(dir string) Option {
	return func(cfg *config) {
		cfg.cacheDir = strings.TrimSpace(dir)
	}
}

// WithAutoReload makes the engine stat template sources before every render
// and recompile any template whose source changed since it was compiled.
func WithAutoReload(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoReload = enabled
	}
}

// WithWatch starts an fsnotify watcher on the base directory that drops
// compiled templates as soon as sources change. Only applies to WithBaseDir.
func WithWatch(enabled bool) Option {
	return func(cfg *config) {
		cfg.watch = enabled
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithLogger sets the logger used for cache and watcher diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Engine satisfies template.TemplateRenderer using a pongo2 template set.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*compiled
	tplExt      string
	sources     sourceLocator
	autoReload  bool
	recorder    *recorder
	manifest    *manifest
	watcher     *watcher
	logger      *slog.Logger
}

// Ensure Engine implements the TemplateRenderer interface.
var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	rec := &recorder{}
	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, &trackingLoader{TemplateLoader: loader, stat: os.Stat, rec: rec})
	}
	if cfg.templates != nil {
		files := cfg.templates
		loaders = append(loaders, &trackingLoader{
			TemplateLoader: pongo2.NewFSLoader(files),
			stat:           func(name string) (fs.FileInfo, error) { return fs.Stat(files, name) },
			rec:            rec,
		})
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("formview", loaders...),
		templates:   make(map[string]*compiled),
		tplExt:      cfg.extension,
		sources:     sourceLocator{baseDir: cfg.baseDir, files: cfg.templates},
		autoReload:  cfg.autoReload,
		recorder:    rec,
		logger:      cfg.logger,
	}
	registerDefaultFilters()

	if cfg.cacheDir != "" {
		m, err := loadManifest(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: open cache dir: %w", err)
		}
		engine.manifest = m
	}

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
		}
	}

	if cfg.watch && cfg.baseDir != "" {
		w, err := newWatcher(cfg.baseDir, engine.Invalidate, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: watch %q: %w", cfg.baseDir, err)
		}
		engine.watcher = w
	}

	return engine, nil
}

// Close stops the source watcher, if any.
func (e *Engine) Close() error {
	if e == nil || e.watcher == nil {
		return nil
	}
	return e.watcher.Close()
}

// Render renders inline template content when name looks like markup and a
// named template otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template, appending the configured
// extension when missing. Failures are reported as *template.Error.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := e.templatePath(name)

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", template.NewError(template.KindRuntime, templatePath, fmt.Errorf("convert data: %w", err))
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", template.NewError(template.KindRuntime, templatePath, err)
	}

	return writeOut(buf.String(), out)
}

// RenderString compiles and renders inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", template.NewError(template.KindSyntax, "", err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", template.NewError(template.KindRuntime, "", fmt.Errorf("convert data: %w", err))
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", template.NewError(template.KindRuntime, "", err)
	}

	return writeOut(buf.String(), out)
}

// RegisterFilter registers a template filter. pongo2 filters are process
// wide, so registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext seeds global data visible to every template of the set.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

func (e *Engine) templatePath(name string) string {
	templatePath := strings.TrimSpace(name)
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}
	return templatePath
}

func writeOut(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

var valuerType = reflect.TypeOf((*template.Valuer)(nil)).Elem()

// convertToContext builds the pongo2 context from a map or struct. Values keep
// their Go types, so pongo2 formats numbers as it would any other int or
// float. Struct data is keyed by json tag name, falling back to the field name.
func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return contextFromMap(map[string]any(v)), nil
	case map[string]any:
		return contextFromMap(v), nil
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return pongo2.Context{}, nil
		}
		rv = rv.Elem()
	}

	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(pongo2.Context, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if key := strings.TrimSpace(iter.Key().String()); key != "" {
				out[key] = normalize(iter.Value().Interface())
			}
		}
		return out, nil
	case rv.Kind() == reflect.Struct:
		return contextFromStruct(rv), nil
	default:
		return nil, fmt.Errorf("gotemplate: context must be a map or struct, got %T", data)
	}
}

func contextFromMap(in map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = normalize(value)
		}
	}
	return out
}

func contextFromStruct(rv reflect.Value) pongo2.Context {
	rt := rv.Type()
	out := make(pongo2.Context, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		name := field.Name
		if tag != "" {
			name = tag
		}
		out[name] = normalize(rv.Field(i).Interface())
	}
	return out
}

// normalize swaps template.Valuer implementations for their template value,
// looking inside generic containers and slices or maps of valuers.
func normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case template.Valuer:
		return normalize(v.TemplateValue())
	case pongo2.Context:
		return map[string]any(contextFromMap(map[string]any(v)))
	case map[string]any:
		return map[string]any(contextFromMap(v))
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !rv.Type().Elem().Implements(valuerType) {
			return value
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || !rv.Type().Elem().Implements(valuerType) {
			return value
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	default:
		return value
	}
}

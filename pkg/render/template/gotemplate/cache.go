package gotemplate

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formview/pkg/render/template"
)

type compiled struct {
	tmpl    *pongo2.Template
	modTime time.Time
	size    int64
	deps    []dependency
}

// stale reports whether the source described by info, or any file read while
// compiling it, changed since the compiled copy was built.
func (c *compiled) stale(info fs.FileInfo) bool {
	if c == nil || info == nil {
		return true
	}
	if info.ModTime().After(c.modTime) || info.Size() != c.size {
		return true
	}
	for _, dep := range c.deps {
		if dep.changed() {
			return true
		}
	}
	return false
}

// dependency is a file pongo2 loaded during a compile: the template itself
// and every partial pulled in through include, extends or import.
type dependency struct {
	path    string
	stat    func(string) (fs.FileInfo, error)
	modTime time.Time
	size    int64
}

func (d dependency) changed() bool {
	info, err := d.stat(d.path)
	if err != nil {
		return true
	}
	return info.ModTime().After(d.modTime) || info.Size() != d.size
}

// recorder collects dependencies while a compile is running. It is only
// touched with Engine.mu held for writing.
type recorder struct {
	active bool
	deps   []dependency
}

func (r *recorder) start() {
	r.active = true
	r.deps = nil
}

func (r *recorder) stop() []dependency {
	deps := r.deps
	r.active = false
	r.deps = nil
	return deps
}

func (r *recorder) add(dep dependency) {
	for _, seen := range r.deps {
		if seen.path == dep.path {
			return
		}
	}
	r.deps = append(r.deps, dep)
}

// trackingLoader wraps a pongo2 loader and records what it serves.
type trackingLoader struct {
	pongo2.TemplateLoader
	stat func(string) (fs.FileInfo, error)
	rec  *recorder
}

func (l *trackingLoader) Get(path string) (io.Reader, error) {
	r, err := l.TemplateLoader.Get(path)
	if err != nil || !l.rec.active {
		return r, err
	}
	if info, statErr := l.stat(path); statErr == nil {
		l.rec.add(dependency{
			path:    path,
			stat:    l.stat,
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	return r, nil
}

type sourceLocator struct {
	baseDir string
	files   fs.FS
}

func (s sourceLocator) stat(name string) (fs.FileInfo, error) {
	var firstErr error
	if s.baseDir != "" {
		info, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(name)))
		if err == nil && !info.IsDir() {
			return info, nil
		}
		firstErr = err
	}
	if s.files != nil {
		info, err := fs.Stat(s.files, name)
		if err == nil && !info.IsDir() {
			return info, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fs.ErrNotExist
	}
	return nil, firstErr
}

func (s sourceLocator) read(name string) ([]byte, error) {
	if s.baseDir != "" {
		data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(name)))
		if err == nil {
			return data, nil
		}
		if s.files == nil {
			return nil, err
		}
	}
	if s.files != nil {
		return fs.ReadFile(s.files, name)
	}
	return nil, fs.ErrNotExist
}

func (s sourceLocator) location(name string) string {
	if s.baseDir != "" {
		return filepath.Join(s.baseDir, filepath.FromSlash(name))
	}
	return name
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	info, err := e.sources.stat(path)
	if err != nil {
		return nil, template.NewError(template.KindLoad, path, err)
	}

	e.mu.RLock()
	entry, ok := e.templates[path]
	e.mu.RUnlock()
	if ok && (!e.autoReload || !entry.stale(info)) {
		return entry.tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.templates[path]; ok && (!e.autoReload || !entry.stale(info)) {
		return entry.tmpl, nil
	}

	if ok {
		e.logger.Debug("template source changed, recompiling", "template", path)
	}

	e.recorder.start()
	tmpl, err := e.templateSet.FromFile(path)
	deps := e.recorder.stop()
	if err != nil {
		return nil, template.NewError(template.KindSyntax, path, err)
	}

	e.templates[path] = &compiled{
		tmpl:    tmpl,
		modTime: info.ModTime(),
		size:    info.Size(),
		deps:    deps,
	}
	e.recordCompiled(path, info)
	return tmpl, nil
}

// Invalidate drops compiled templates so the next render recompiles them.
// With no names every compiled template is dropped.
func (e *Engine) Invalidate(names ...string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(names) == 0 {
		e.templates = make(map[string]*compiled, len(e.templates))
		return
	}
	for _, name := range names {
		delete(e.templates, e.templatePath(name))
	}
}

// CacheEntries returns a copy of the compiled template manifest. It is empty
// when the engine was built without a cache dir.
func (e *Engine) CacheEntries() map[string]CacheEntry {
	if e == nil || e.manifest == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.manifest.entries()
}

// recordCompiled is called with e.mu held.
func (e *Engine) recordCompiled(path string, info fs.FileInfo) {
	if e.manifest == nil {
		return
	}
	entry := CacheEntry{
		Source:     e.sources.location(path),
		ModTime:    info.ModTime().UTC(),
		Size:       info.Size(),
		CompiledAt: time.Now().UTC(),
	}
	if data, err := e.sources.read(path); err == nil {
		sum := sha256.Sum256(data)
		entry.SHA256 = hex.EncodeToString(sum[:])
	}
	e.manifest.Templates[path] = entry
	if err := e.manifest.save(); err != nil {
		e.logger.Warn("template cache manifest not saved", "path", e.manifest.path, "error", err)
	}
}

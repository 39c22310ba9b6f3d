// Package gotemplate implements template.TemplateRenderer on top of pongo2.
//
// Templates are loaded from a base directory or an fs.FS and compiled once.
// With WithAutoReload the engine stats the source before each render and
// recompiles it when the file on disk is newer than the compiled copy.
// WithCacheDir records every compiled template (source, mod time, size,
// sha256) in manifest.yaml inside the cache dir.
package gotemplate

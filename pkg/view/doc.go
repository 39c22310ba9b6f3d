// Package view holds the named parameters handed to a template and renders
// them through a template engine.
//
// Parameters come in two variants: Param exposes its raw value to the
// template, FieldParam exposes a whole submitted Field (value plus error
// state). Setting a parameter whose name already exists replaces it in place,
// so templates always see one value per name in first-seen order.
//
// RedirectTo ends request handling: it emits the redirect and unwinds the
// caller, which the form lifecycle (or Catch) recovers.
package view

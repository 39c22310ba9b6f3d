// Package template defines the renderer-agnostic template engine contract used
// by views, plus the error taxonomy every engine maps its failures onto.
//
// Engines report three kinds of failure: the template could not be found or
// read (ErrTemplateLoad), the template could not be compiled
// (ErrTemplateSyntax), or evaluating the template failed (ErrTemplateRuntime).
// Callers treat all three the same way: log the failure and report an error
// state to whoever issued the request.
package template

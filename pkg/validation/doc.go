// Package validation provides building blocks for form IsValid hooks.
//
// Bind decodes submitted values into a tagged struct, Struct checks it with
// go-playground/validator, and OpenAPI validates submissions against a request
// body schema. Each reports Issues, which ApplyTo copies onto a form as field
// and form level messages.
package validation

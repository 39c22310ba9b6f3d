package view

import "strings"

// Exposure selects how a parameter is handed to the template.
type Exposure int

const (
	// ExposeValue hands the template the raw value.
	ExposeValue Exposure = iota
	// ExposeField hands the template the whole Field.
	ExposeField
)

func (e Exposure) String() string {
	switch e {
	case ExposeValue:
		return "value"
	case ExposeField:
		return "field"
	default:
		return "unknown"
	}
}

// Field is a submitted form field together with its validation state.
type Field struct {
	Name    string   `json:"name"`
	Value   string   `json:"value"`
	Errors  []string `json:"errors,omitempty"`
	Invalid bool     `json:"invalid"`
}

// TemplateValue exposes the field to templates under lower case keys.
func (f Field) TemplateValue() any {
	return map[string]any{
		"name":    f.Name,
		"value":   f.Value,
		"errors":  append([]string(nil), f.Errors...),
		"invalid": f.Invalid,
	}
}

// Parameter is a named value passed to a template. The zero value is a
// generic parameter with an empty name.
type Parameter struct {
	name     string
	value    any
	field    Field
	exposure Exposure
}

// Param returns a generic parameter exposed to templates as value.
func Param(name string, value any) Parameter {
	return Parameter{
		name:     strings.TrimSpace(name),
		value:    value,
		exposure: ExposeValue,
	}
}

// FieldParam returns a submitted-field parameter named after the field.
// Invalid is forced on when the field carries errors.
func FieldParam(field Field) Parameter {
	field.Name = strings.TrimSpace(field.Name)
	field.Errors = append([]string(nil), field.Errors...)
	if len(field.Errors) > 0 {
		field.Invalid = true
	}
	return Parameter{
		name:     field.Name,
		field:    field,
		exposure: ExposeField,
	}
}

// Name returns the parameter name.
func (p Parameter) Name() string { return p.name }

// Exposure reports the parameter variant.
func (p Parameter) Exposure() Exposure { return p.exposure }

// Value returns the raw value: the generic value, or the submitted string for
// field parameters.
func (p Parameter) Value() any {
	switch p.exposure {
	case ExposeField:
		return p.field.Value
	default:
		return p.value
	}
}

// Field returns the submitted field of a field parameter.
func (p Parameter) Field() (Field, bool) {
	if p.exposure != ExposeField {
		return Field{}, false
	}
	return p.field, true
}

// Exposed returns what the template sees under the parameter name.
func (p Parameter) Exposed() any {
	switch p.exposure {
	case ExposeValue:
		return p.value
	case ExposeField:
		field := p.field
		field.Errors = append([]string(nil), p.field.Errors...)
		return field
	default:
		return nil
	}
}

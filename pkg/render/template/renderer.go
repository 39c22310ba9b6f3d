package template

import (
	"io"
)

// TemplateRenderer is the engine contract views render through. The pongo2
// backed implementation lives in the gotemplate subpackage.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// Valuer is implemented by values that hand templates a different shape than
// their Go form, typically a map keyed by lower case names. Engines call it
// before rendering; every other value reaches the template untouched.
type Valuer interface {
	TemplateValue() any
}

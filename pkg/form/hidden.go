package form

import (
	"fmt"
	"sort"
	"strings"
)

// ParamHidden names the parameter carrying hidden inputs.
const ParamHidden = "hidden"

// HiddenField is a hidden form input rendered alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TemplateValue exposes the input to templates as name and value.
func (h HiddenField) TemplateValue() any {
	return map[string]any{"name": h.Name, "value": h.Value}
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend expectations (for example,
// "_csrf" or "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// AddHidden records hidden inputs. Empty names are ignored; later fields win
// on name collisions.
func (f *Form) AddHidden(fields ...HiddenField) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		if f.hidden == nil {
			f.hidden = make(map[string]string)
		}
		f.hidden[name] = field.Value
	}
}

// HiddenFields returns the hidden inputs sorted by name.
func (f *Form) HiddenFields() []HiddenField {
	if len(f.hidden) == 0 {
		return nil
	}

	names := make([]string, 0, len(f.hidden))
	for name := range f.hidden {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: f.hidden[name],
		})
	}
	return result
}

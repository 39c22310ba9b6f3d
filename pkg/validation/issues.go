package validation

import (
	"strings"
)

// Issue is one validation failure. Field is empty for form level issues.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Issues is a list of validation failures.
type Issues []Issue

// Sink receives validation messages. *form.Form satisfies it.
type Sink interface {
	AddFieldError(field, message string)
	AddError(message string)
}

// Error joins the issue messages.
func (i Issues) Error() string {
	parts := make([]string, 0, len(i))
	for _, issue := range i {
		if issue.Field != "" {
			parts = append(parts, issue.Field+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return strings.Join(parts, "; ")
}

// Valid reports whether there are no issues.
func (i Issues) Valid() bool { return len(i) == 0 }

// ApplyTo records every issue on sink and reports whether the list was empty,
// so an IsValid hook can end with `return issues.ApplyTo(f)`.
func (i Issues) ApplyTo(sink Sink) bool {
	if sink == nil {
		return i.Valid()
	}
	for _, issue := range i {
		if issue.Field == "" {
			sink.AddError(issue.Message)
			continue
		}
		sink.AddFieldError(issue.Field, issue.Message)
	}
	return i.Valid()
}

// Fields groups field messages by field, dropping duplicates.
func (i Issues) Fields() map[string][]string {
	out := make(map[string][]string)
	for _, issue := range i {
		if issue.Field == "" {
			continue
		}
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	for field, messages := range out {
		out[field] = normalizeMessages(messages)
	}
	return out
}

// Merge concatenates issue lists.
func Merge(lists ...Issues) Issues {
	var out Issues
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

package request

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// SubmissionMethod is the method that marks a request as a form submission.
const SubmissionMethod = http.MethodPost

// Context is the request state a form lifecycle consumes. Session is only
// meaningful when HasSession is true.
type Context struct {
	Method     string
	Path       string
	RemoteAddr string
	Fields     url.Values
	Query      url.Values
	Header     http.Header
	Env        map[string]string
	Session    map[string]any
	HasSession bool
}

// New returns a Context for method carrying the given submitted fields.
func New(method string, fields url.Values) *Context {
	return &Context{
		Method: strings.ToUpper(strings.TrimSpace(method)),
		Fields: cloneValues(fields),
		Query:  url.Values{},
		Header: http.Header{},
	}
}

// IsSubmission reports whether the request method is the submission method.
func (c *Context) IsSubmission() bool {
	if c == nil {
		return false
	}
	return strings.EqualFold(c.Method, SubmissionMethod)
}

// Field returns the first submitted value for name.
func (c *Context) Field(name string) (string, bool) {
	if c == nil || c.Fields == nil {
		return "", false
	}
	values, ok := c.Fields[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// IsEmptyField reports whether name is missing or blank after trimming
// whitespace. "0" is not empty.
func (c *Context) IsEmptyField(name string) bool {
	value, ok := c.Field(name)
	if !ok {
		return true
	}
	return len(strings.TrimSpace(value)) == 0
}

// SessionData returns the session values when a session exists.
func (c *Context) SessionData() (map[string]any, bool) {
	if c == nil || !c.HasSession {
		return nil, false
	}
	out := make(map[string]any, len(c.Session))
	for key, value := range c.Session {
		out[key] = value
	}
	return out, true
}

// ServerData flattens the request environment for templates: method, path,
// remote address, query values, headers (lower-cased names) and env entries.
func (c *Context) ServerData() map[string]any {
	if c == nil {
		return map[string]any{}
	}

	headers := make(map[string]any, len(c.Header))
	for name, values := range c.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	query := make(map[string]any, len(c.Query))
	for name := range c.Query {
		query[name] = c.Query.Get(name)
	}

	env := make(map[string]any, len(c.Env))
	for key, value := range c.Env {
		env[key] = value
	}

	return map[string]any{
		"method":      c.Method,
		"path":        c.Path,
		"remote_addr": c.RemoteAddr,
		"query":       query,
		"headers":     headers,
		"env":         env,
	}
}

// FieldNames returns submitted field names in sorted order.
func (c *Context) FieldNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneValues(in url.Values) url.Values {
	out := make(url.Values, len(in))
	for key, values := range in {
		out[key] = append([]string(nil), values...)
	}
	return out
}

package view

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Redirector emits a transport level redirect.
type Redirector interface {
	Redirect(location string)
}

// RedirectorFunc adapts a function to Redirector.
type RedirectorFunc func(location string)

// Redirect implements Redirector.
func (fn RedirectorFunc) Redirect(location string) {
	if fn != nil {
		fn(location)
	}
}

// HTTPRedirector redirects through http.Redirect with code (302 when zero).
func HTTPRedirector(w http.ResponseWriter, r *http.Request, code int) Redirector {
	if code == 0 {
		code = http.StatusFound
	}
	return RedirectorFunc(func(location string) {
		http.Redirect(w, r, location, code)
	})
}

// Redirect is the value RedirectTo unwinds the caller with.
type Redirect struct {
	Location string
}

func (r *Redirect) Error() string {
	return fmt.Sprintf("redirect to %s", r.Location)
}

// RedirectTo emits a redirect to location, appending query url-encoded when
// it is non-nil, and never returns: the caller is unwound with a *Redirect
// panic. Recover it with Catch; form.Run does so for its hooks.
func RedirectTo(out Redirector, location string, query map[string]string) {
	target := BuildLocation(location, query)
	if out != nil {
		out.Redirect(target)
	}
	panic(&Redirect{Location: target})
}

// BuildLocation appends the encoded query to location, keeping any existing
// query and fragment.
func BuildLocation(location string, query map[string]string) string {
	if query == nil {
		return location
	}
	values := make(url.Values, len(query))
	for key, value := range query {
		values.Set(key, value)
	}
	encoded := values.Encode()
	if encoded == "" {
		return location
	}

	base, fragment, hasFragment := strings.Cut(location, "#")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = ""
		}
	}
	target := base + sep + encoded
	if hasFragment {
		target += "#" + fragment
	}
	return target
}

// Catch runs fn and returns the redirect it raised, if any. Other panics
// propagate.
func Catch(fn func()) (redirect *Redirect) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r, ok := recovered.(*Redirect)
			if !ok {
				panic(recovered)
			}
			redirect = r
		}
	}()
	fn()
	return nil
}

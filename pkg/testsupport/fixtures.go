package testsupport

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// WriteTemplates writes name -> content pairs under dir (a fresh temp dir
// when dir is empty) and returns the directory.
func WriteTemplates(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir template dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}
	return dir
}

// TouchFuture rewrites a template and moves its mod time forward so change
// detection does not depend on filesystem timestamp resolution.
func TouchFuture(t *testing.T, dir, name, content string) {
	t.Helper()

	path := WriteTemplates(t, dir, map[string]string{name: content})
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(filepath.Join(path, filepath.FromSlash(name)), future, future); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

// NewFormRequest builds an HTTP request carrying url-encoded fields. GET
// requests carry the fields in the query string.
func NewFormRequest(method, target string, fields url.Values) *http.Request {
	if method == http.MethodGet || method == http.MethodHead {
		if len(fields) > 0 {
			target += "?" + fields.Encode()
		}
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

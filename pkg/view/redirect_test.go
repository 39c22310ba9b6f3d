package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-formview/pkg/view"
)

func TestRedirectTo_HaltsCaller(t *testing.T) {
	var emitted string
	reachedAfter := false

	redirect := view.Catch(func() {
		view.RedirectTo(view.RedirectorFunc(func(location string) { emitted = location }),
			"/thanks", map[string]string{"id": "42"})
		reachedAfter = true
	})

	if redirect == nil || redirect.Location != "/thanks?id=42" {
		t.Fatalf("unexpected redirect %#v", redirect)
	}
	if emitted != "/thanks?id=42" {
		t.Fatalf("unexpected emitted location %q", emitted)
	}
	if reachedAfter {
		t.Fatalf("code after RedirectTo must not run")
	}
}

func TestBuildLocation(t *testing.T) {
	cases := []struct {
		location string
		query    map[string]string
		want     string
	}{
		{"/thanks", nil, "/thanks"},
		{"/thanks", map[string]string{}, "/thanks"},
		{"/thanks", map[string]string{"id": "42"}, "/thanks?id=42"},
		{"/thanks", map[string]string{"b": "2", "a": "x y"}, "/thanks?a=x+y&b=2"},
		{"/thanks?src=form", map[string]string{"id": "42"}, "/thanks?src=form&id=42"},
		{"/thanks#done", map[string]string{"id": "42"}, "/thanks?id=42#done"},
	}
	for _, tc := range cases {
		if got := view.BuildLocation(tc.location, tc.query); got != tc.want {
			t.Errorf("BuildLocation(%q, %v) = %q, want %q", tc.location, tc.query, got, tc.want)
		}
	}
}

func TestHTTPRedirector(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)

	redirect := view.Catch(func() {
		view.RedirectTo(view.HTTPRedirector(rec, req, 0), "/thanks", map[string]string{"id": "42"})
	})

	if redirect == nil {
		t.Fatalf("expected redirect")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/thanks?id=42" {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestCatch_PropagatesOtherPanics(t *testing.T) {
	defer func() {
		if recovered := recover(); recovered != "boom" {
			t.Fatalf("expected boom panic, got %v", recovered)
		}
	}()
	view.Catch(func() { panic("boom") })
}

func TestCatch_NoRedirect(t *testing.T) {
	if redirect := view.Catch(func() {}); redirect != nil {
		t.Fatalf("expected nil redirect, got %#v", redirect)
	}
}

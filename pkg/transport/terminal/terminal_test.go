package terminal_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formview/pkg/testsupport"
	"github.com/goliatone/go-formview/pkg/transport/terminal"
	"github.com/goliatone/go-formview/pkg/view"
)

type stubDriver struct {
	inputs   map[string]string
	confirms map[string]bool
	selects  map[string]int
	multis   map[string][]int
	err      error
	asked    []string
}

func (d *stubDriver) Input(_ context.Context, cfg terminal.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if d.err != nil {
		return "", d.err
	}
	answer := d.inputs[cfg.Message]
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (d *stubDriver) Password(ctx context.Context, cfg terminal.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *stubDriver) Confirm(_ context.Context, cfg terminal.ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.confirms[cfg.Message], d.err
}

func (d *stubDriver) Select(_ context.Context, cfg terminal.SelectConfig) (int, error) {
	d.asked = append(d.asked, cfg.Message)
	idx, ok := d.selects[cfg.Message]
	if !ok {
		idx = cfg.DefaultIndex
	}
	return idx, d.err
}

func (d *stubDriver) MultiSelect(_ context.Context, cfg terminal.SelectConfig) ([]int, error) {
	d.asked = append(d.asked, cfg.Message)
	picked, ok := d.multis[cfg.Message]
	if !ok {
		picked = cfg.Defaults
	}
	return picked, d.err
}

func (d *stubDriver) TextArea(ctx context.Context, cfg terminal.TextAreaConfig) (string, error) {
	return d.Input(ctx, terminal.InputConfig{Message: cfg.Message})
}

func TestCollect(t *testing.T) {
	driver := &stubDriver{
		inputs:   map[string]string{"Email": "ada@example.com", "message": "hello"},
		confirms: map[string]bool{"Subscribe?": true, "Terms?": false},
		multis:   map[string][]int{"Topics": {0, 2}},
	}
	prompts := []terminal.Prompt{
		{Name: "email", Message: "Email", Required: true},
		{Name: "message", Kind: terminal.KindTextArea},
		{Name: "subscribe", Message: "Subscribe?", Kind: terminal.KindConfirm},
		{Name: "terms", Message: "Terms?", Kind: terminal.KindConfirm},
		{Name: "dept", Message: "Department", Kind: terminal.KindSelect, Options: []string{"sales", "support"}, Default: "support"},
		{Name: "topic", Message: "Topics", Kind: terminal.KindMultiSelect, Options: []string{"a", "b", "c"}},
	}

	got, err := terminal.Collect(context.Background(), driver, prompts)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := url.Values{
		"email":     {"ada@example.com"},
		"message":   {"hello"},
		"subscribe": {"on"},
		"dept":      {"support"},
		"topic":     {"a", "c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Email", "message", "Subscribe?", "Terms?", "Department", "Topics"}, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_RequiredAndAbort(t *testing.T) {
	_, err := terminal.Collect(context.Background(), &stubDriver{}, []terminal.Prompt{{Name: "email", Required: true}})
	if err == nil {
		t.Fatalf("expected required prompt to fail on a blank answer")
	}

	_, err = terminal.Collect(context.Background(), &stubDriver{err: terminal.ErrAborted}, []terminal.Prompt{{Name: "email"}})
	if !errors.Is(err, terminal.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func newFactory(t *testing.T, hooks form.Hooks) form.Factory {
	t.Helper()

	dir := testsupport.WriteTemplates(t, "", map[string]string{
		"contact.tpl": `{{ server.method }}:{% for e in errors %}{{ e }};{% endfor %}{{ status }}`,
	})
	engine, err := gotemplate.New(gotemplate.WithBaseDir(dir))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return func(_ context.Context, f *form.Form) (form.Hooks, error) {
		v, err := f.NewView("contact", view.WithEngine(engine))
		if err != nil {
			return nil, err
		}
		f.SetView(v)
		return hooks, nil
	}
}

func TestRun_WithoutPromptsDisplaysInitialForm(t *testing.T) {
	var out, errOut bytes.Buffer
	result, err := terminal.Run(context.Background(), newFactory(t, form.HookFuncs{}),
		terminal.WithOutput(&out, &errOut),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.State != form.StateInitial {
		t.Fatalf("expected initial state, got %s", result.State)
	}
	if got := out.String(); got != "GET:" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRun_SubmitsAnswers(t *testing.T) {
	hooks := form.HookFuncs{
		Valid: func(_ context.Context, f *form.Form) bool {
			if f.IsEmptyPostField("email") {
				f.AddError("email is required")
				return false
			}
			return true
		},
		Process: func(_ context.Context, f *form.Form) error {
			f.SetStatus("sent to " + f.Field("email"))
			return nil
		},
	}
	driver := &stubDriver{inputs: map[string]string{"email": "ada@example.com"}}

	var out bytes.Buffer
	result, err := terminal.Run(context.Background(), newFactory(t, hooks),
		terminal.WithDriver(driver),
		terminal.WithPrompts(terminal.Prompt{Name: "email"}),
		terminal.WithOutput(&out, io.Discard),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.BusinessRan {
		t.Fatalf("expected business to run")
	}
	if got := out.String(); got != "POST:sent to ada@example.com" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRun_PrintsRedirect(t *testing.T) {
	hooks := form.HookFuncs{
		Process: func(_ context.Context, f *form.Form) error {
			f.RedirectTo("/thanks", map[string]string{"id": "42"})
			return nil
		},
	}
	driver := &stubDriver{inputs: map[string]string{"email": "ada@example.com"}}

	var out bytes.Buffer
	result, err := terminal.Run(context.Background(), newFactory(t, hooks),
		terminal.WithDriver(driver),
		terminal.WithPrompts(terminal.Prompt{Name: "email"}),
		terminal.WithOutput(&out, io.Discard),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Outcome != form.OutcomeRedirected {
		t.Fatalf("expected redirect outcome, got %s", result.Outcome)
	}
	if got := out.String(); got != "redirect: /thanks?id=42\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRun_PrintsRenderError(t *testing.T) {
	factory := func(_ context.Context, f *form.Form) (form.Hooks, error) {
		v, err := f.NewView("missing", view.WithSourceDir(t.TempDir()), view.WithCacheDir(t.TempDir()))
		if err != nil {
			return nil, err
		}
		f.SetView(v)
		return form.HookFuncs{}, nil
	}

	var out, errOut bytes.Buffer
	_, err := terminal.Run(context.Background(), factory, terminal.WithOutput(&out, &errOut))
	if err == nil {
		t.Fatalf("expected render error")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no partial output, got %q", out.String())
	}
	if !bytes.HasPrefix(errOut.Bytes(), []byte("error: ")) {
		t.Fatalf("expected error line, got %q", errOut.String())
	}
}

func TestRun_RequiresFactory(t *testing.T) {
	if _, err := terminal.Run(context.Background(), nil); !errors.Is(err, terminal.ErrNoFactory) {
		t.Fatalf("expected ErrNoFactory, got %v", err)
	}
}

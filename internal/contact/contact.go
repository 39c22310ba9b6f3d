// Package contact is the sample contact form served by cmd/formview.
package contact

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/render/template"
	"github.com/goliatone/go-formview/pkg/validation"
	"github.com/goliatone/go-formview/pkg/view"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the embedded contact and thanks templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	TemplateContact = "contact"
	TemplateThanks  = "thanks"
)

// Topics are the selectable message topics.
var Topics = []string{"general", "sales", "support"}

// Submission is a bound contact form.
type Submission struct {
	Name      string `form:"name" validate:"notblank,max=80"`
	Email     string `form:"email" validate:"notblank,email"`
	Topic     string `form:"topic" validate:"omitempty,oneof=general sales support"`
	Message   string `form:"message" validate:"notblank,max=2000"`
	Subscribe bool   `form:"subscribe"`
}

// Sender delivers a valid submission and returns its reference.
type Sender interface {
	Send(ctx context.Context, s Submission) (string, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, s Submission) (string, error)

func (fn SenderFunc) Send(ctx context.Context, s Submission) (string, error) {
	return fn(ctx, s)
}

// LogSender logs submissions instead of delivering them.
func LogSender(logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return SenderFunc(func(ctx context.Context, s Submission) (string, error) {
		reference := uuid.NewString()
		logger.InfoContext(ctx, "contact submission received",
			"reference", reference,
			"email", s.Email,
			"topic", s.Topic,
			"subscribe", s.Subscribe,
		)
		return reference, nil
	})
}

// Config wires the contact form.
type Config struct {
	Engine template.TemplateRenderer
	Sender Sender
	// ThanksPath, when set, makes a successful submission redirect there
	// with the reference in the query instead of rendering the thanks view.
	ThanksPath string
}

// Factory returns a form.Factory building the contact form.
func Factory(cfg Config) form.Factory {
	return func(_ context.Context, f *form.Form) (form.Hooks, error) {
		v, err := f.NewView(TemplateContact,
			view.WithEngine(cfg.Engine),
			view.WithParameters(
				view.Param("title", "Contact us"),
				view.Param("topics", Topics),
			),
		)
		if err != nil {
			return nil, err
		}
		f.SetView(v)
		f.ExposeFields("name", "email", "topic", "message", "subscribe")
		f.AddHidden(form.Hidden("form", TemplateContact))
		return &hooks{cfg: cfg}, nil
	}
}

type hooks struct {
	cfg        Config
	submission Submission
}

func (h *hooks) IsValid(_ context.Context, f *form.Form) bool {
	issues, err := validation.BindStruct(f.Request().Fields, &h.submission)
	if err != nil {
		f.AddError(err.Error())
		return false
	}
	return issues.ApplyTo(f)
}

func (h *hooks) Business(ctx context.Context, f *form.Form) error {
	sender := h.cfg.Sender
	if sender == nil {
		sender = LogSender(f.Logger())
	}
	reference, err := sender.Send(ctx, h.submission)
	if err != nil {
		return form.Failure("We could not send your message. Please try again.", err)
	}

	if h.cfg.ThanksPath != "" {
		f.RedirectTo(h.cfg.ThanksPath, map[string]string{"ref": reference})
	}

	thanks, err := f.NewView(TemplateThanks,
		view.WithEngine(h.cfg.Engine),
		view.WithParameters(
			view.Param("sender", h.submission.Name),
			view.Param("reference", reference),
			view.Param("preview", preview(h.submission.Message)),
		),
	)
	if err != nil {
		return err
	}
	f.SetView(thanks)
	f.SetStatus("Your message was sent.")
	return nil
}

// ThanksFactory renders the thanks page for a redirect from the contact
// form, reading the reference from the query string.
func ThanksFactory(cfg Config) form.Factory {
	return func(_ context.Context, f *form.Form) (form.Hooks, error) {
		v, err := f.NewView(TemplateThanks,
			view.WithEngine(cfg.Engine),
			view.WithParameters(view.Param("reference", strings.TrimSpace(f.Field("ref")))),
		)
		if err != nil {
			return nil, err
		}
		f.SetView(v)
		return form.HookFuncs{}, nil
	}
}

func preview(message string) string {
	message = strings.TrimSpace(message)
	const limit = 140
	if runes := []rune(message); len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return message
}

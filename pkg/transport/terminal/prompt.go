package terminal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind selects the prompt widget.
type Kind int

const (
	KindText Kind = iota
	KindPassword
	KindConfirm
	KindSelect
	KindMultiSelect
	KindTextArea
)

// Prompt asks for one submitted field.
type Prompt struct {
	Name     string
	Message  string
	Help     string
	Kind     Kind
	Options  []string
	Default  string
	Required bool
}

// Collect asks every prompt in order and returns the answers as submitted
// form values. A confirmed KindConfirm prompt submits "on", like a checked
// checkbox; a declined one submits nothing.
func Collect(ctx context.Context, driver PromptDriver, prompts []Prompt) (url.Values, error) {
	if driver == nil {
		return nil, errors.New("terminal: prompt driver is required")
	}
	values := url.Values{}
	for _, p := range prompts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, errors.New("terminal: prompt name is required")
		}
		if err := ask(ctx, driver, p, name, values); err != nil {
			return nil, fmt.Errorf("terminal: prompt %s: %w", name, err)
		}
	}
	return values, nil
}

func ask(ctx context.Context, driver PromptDriver, p Prompt, name string, values url.Values) error {
	message := p.Message
	if message == "" {
		message = name
	}

	switch p.Kind {
	case KindText, KindPassword:
		cfg := InputConfig{Message: message, Help: p.Help, Default: p.Default}
		if p.Required {
			cfg.Validator = requireValue
		}
		var (
			answer string
			err    error
		)
		if p.Kind == KindPassword {
			answer, err = driver.Password(ctx, cfg)
		} else {
			answer, err = driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}
		values.Set(name, answer)
	case KindTextArea:
		answer, err := driver.TextArea(ctx, TextAreaConfig{Message: message, Help: p.Help, Default: p.Default})
		if err != nil {
			return err
		}
		values.Set(name, answer)
	case KindConfirm:
		ok, err := driver.Confirm(ctx, ConfirmConfig{Message: message, Help: p.Help, Default: isTruthy(p.Default)})
		if err != nil {
			return err
		}
		if ok {
			values.Set(name, "on")
		}
	case KindSelect:
		if len(p.Options) == 0 {
			return errors.New("select prompt has no options")
		}
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      message,
			Help:         p.Help,
			Options:      p.Options,
			DefaultIndex: indexOf(p.Options, p.Default),
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(p.Options) {
			values.Set(name, p.Options[idx])
		}
	case KindMultiSelect:
		if len(p.Options) == 0 {
			return errors.New("multi-select prompt has no options")
		}
		var defaults []int
		for _, value := range strings.Split(p.Default, ",") {
			if idx := indexOf(p.Options, strings.TrimSpace(value)); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		picked, err := driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Help:     p.Help,
			Options:  p.Options,
			Defaults: defaults,
		})
		if err != nil {
			return err
		}
		for _, idx := range picked {
			if idx >= 0 && idx < len(p.Options) {
				values.Add(name, p.Options[idx])
			}
		}
	default:
		return fmt.Errorf("unsupported prompt kind %d", p.Kind)
	}
	return nil
}

func requireValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

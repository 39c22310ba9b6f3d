package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formview/internal/contact"
	"github.com/goliatone/go-formview/pkg/transport/terminal"
)

func contactPrompts() []terminal.Prompt {
	return []terminal.Prompt{
		{Name: "name", Message: "Your name", Required: true},
		{Name: "email", Message: "Email", Required: true},
		{Name: "topic", Message: "Topic", Kind: terminal.KindSelect, Options: contact.Topics, Default: contact.Topics[0]},
		{Name: "message", Message: "Message", Kind: terminal.KindTextArea},
		{Name: "subscribe", Message: "Keep me posted?", Kind: terminal.KindConfirm},
	}
}

func newFillCmd(a *app) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in the contact form from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.newEngine()
			if err != nil {
				return fmt.Errorf("fill: %w", err)
			}

			opts := []terminal.Option{
				terminal.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
				terminal.WithLogger(a.logger),
			}
			if !show {
				opts = append(opts, terminal.WithPrompts(contactPrompts()...))
			}

			factory := contact.Factory(contact.Config{Engine: engine, Sender: contact.LogSender(a.logger)})
			_, err = terminal.Run(cmd.Context(), factory, opts...)
			if errors.Is(err, terminal.ErrAborted) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "render the empty form without prompting")
	return cmd
}

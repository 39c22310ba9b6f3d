// Package terminal runs a form lifecycle from an interactive terminal.
//
// Prompts are answered through a PromptDriver (survey by default). Answering
// at least one prompt turns the run into a submission, mirroring an HTTP POST;
// with no prompts the form is displayed as on an initial GET. Rendered output
// and redirects are written to the configured writer.
package terminal

// Package llm defines the completion engine used for AI completions.
package llm

import (
	"context"
	"errors"
)

// SystemPrompt frames every completion request.
const SystemPrompt = "You are an assistant that answers questions about a document transcription. " +
	"Answer in the language of the question and rely only on the transcription text provided."

// ErrNotConfigured is returned when no provider key is configured.
var ErrNotConfigured = errors.New("completion engine not configured")

// Result is a generated completion.
type Result struct {
	Text string
	// TokensUsed is nil when the provider reported no usage.
	TokensUsed *int
}

// Completer generates a response for prompt applied to text.
type Completer interface {
	Complete(ctx context.Context, prompt, text string) (Result, error)
}

// UserMessage joins the caller's prompt and the document text.
func UserMessage(prompt, text string) string {
	return prompt + "\n\n" + text
}

// Unconfigured is a Completer that always fails with ErrNotConfigured.
type Unconfigured struct{}

// Complete returns ErrNotConfigured.
func (Unconfigured) Complete(context.Context, string, string) (Result, error) {
	return Result{}, ErrNotConfigured
}

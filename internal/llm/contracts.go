// Package llm is the model-backed extraction tier: prompt selection, the
// model call through a Completer, and turning whatever comes back into
// transactions without trusting it.
package llm

import (
	"context"
	"errors"
)

// Completer sends one system+user exchange to a language model and returns
// the raw text of its reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single-turn model call.
type CompletionRequest struct {
	Model           string
	System          string
	User            string
	Temperature     float32
	MaxOutputTokens int32
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

var (
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrUnrecognizedShape is returned when the reply is JSON but not one of
	// the accepted transaction-list shapes.
	ErrUnrecognizedShape = errors.New("unrecognized response shape")
)

const (
	// DefaultGeminiModel is used when no model name is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultTemperature keeps extraction close to deterministic.
	DefaultTemperature float32 = 0.1
	// DefaultMaxOutputTokens bounds the reply size.
	DefaultMaxOutputTokens int32 = 4096
)

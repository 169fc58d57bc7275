// Package ai wraps the generative endpoints the app depends on: chat
// completions for summaries and reel flows, image generation for
// stylized frames
package ai

import (
	"context"
	"fmt"
)

// Client is implemented by the OpenAI client and by test fakes
type Client interface {
	// Chat sends a single user prompt and returns the raw completion text
	Chat(ctx context.Context, prompt string) (string, error)
	// GenerateImage returns a URL (possibly a data URL) of a generated image
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// UpstreamError is returned for non-2xx or empty responses from the
// generative API. Handlers translate it to a 502
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream ai error, status %d", e.Status)
	}
	return fmt.Sprintf("upstream ai error, status %d: %s", e.Status, e.Message)
}

package providers

import (
	"context"
)

// TextGenerator sends a single prompt to a language model and returns its raw text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend in logs and metrics
	Name() string
}

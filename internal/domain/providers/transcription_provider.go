package providers

import (
	"context"
)

// Transcriber converts an audio file to plain text. An empty string means
// no speech was recognised.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

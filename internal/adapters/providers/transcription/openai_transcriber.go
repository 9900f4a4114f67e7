package transcription

import (
	"context"
	"time"

	"github.com/reelspot/backend/internal/domain/providers"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

// OpenAITranscriber delegates speech recognition to a hosted transcription API
type OpenAITranscriber struct {
	client  providers.Transcriber
	timeout time.Duration
}

var _ providers.Transcriber = (*OpenAITranscriber)(nil)

// NewOpenAITranscriber wraps an API client with the transcribe timeout
func NewOpenAITranscriber(client providers.Transcriber, timeout time.Duration) *OpenAITranscriber {
	return &OpenAITranscriber{client: client, timeout: timeout}
}

// Transcribe uploads audioPath and returns the recognised text
func (o *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	runCtx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	text, err := o.client.Transcribe(runCtx, audioPath)
	if err != nil {
		return "", apperrors.NewExternalError("transcription failed", err)
	}
	return text, nil
}

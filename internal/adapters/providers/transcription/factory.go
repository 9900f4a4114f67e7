package transcription

import (
	"fmt"
	"time"

	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/clients/openai"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/internal/infrastructure/process"
	"github.com/reelspot/backend/pkg/config"
)

const (
	ProviderFasterWhisper = "faster-whisper"
	ProviderOpenAI        = "openai"
)

// NewTranscriber creates the speech-to-text backend named by cfg.Provider
func NewTranscriber(cfg config.TranscriptionConfig, openAIKey string, timeout time.Duration, runner process.Runner, metrics *observability.Metrics) (providers.Transcriber, error) {
	switch cfg.Provider {
	case "", ProviderFasterWhisper:
		return NewWhisperScriptTranscriber(cfg, timeout, runner), nil
	case ProviderOpenAI:
		client, err := openai.NewClient(openAIKey, openai.Options{
			TranscribeModel: cfg.OpenAIModel,
			Metrics:         metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai transcription client: %w", err)
		}
		return NewOpenAITranscriber(client, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", cfg.Provider)
	}
}

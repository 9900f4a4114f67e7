package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/process"
	"github.com/reelspot/backend/pkg/config"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

// WhisperScriptTranscriber shells out to a faster-whisper python script that
// prints the transcript on stdout
type WhisperScriptTranscriber struct {
	runner      process.Runner
	pythonPath  string
	scriptPath  string
	model       string
	device      string
	computeType string
	timeout     time.Duration
}

var _ providers.Transcriber = (*WhisperScriptTranscriber)(nil)

// NewWhisperScriptTranscriber creates a transcriber from transcription configuration
func NewWhisperScriptTranscriber(cfg config.TranscriptionConfig, timeout time.Duration, runner process.Runner) *WhisperScriptTranscriber {
	return &WhisperScriptTranscriber{
		runner:      runner,
		pythonPath:  cfg.PythonPath,
		scriptPath:  cfg.ScriptPath,
		model:       cfg.Model,
		device:      cfg.Device,
		computeType: cfg.ComputeType,
		timeout:     timeout,
	}
}

// Transcribe runs the script against audioPath and returns its trimmed stdout
func (w *WhisperScriptTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", apperrors.NewValidationError("audio path is required")
	}

	args := []string{w.scriptPath, audioPath}
	if w.model != "" {
		args = append(args, "--model", w.model)
	}
	if w.device != "" {
		args = append(args, "--device", w.device)
	}
	if w.computeType != "" {
		args = append(args, "--compute-type", w.computeType)
	}

	runCtx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()

	result, err := w.runner.Run(runCtx, w.pythonPath, args...)
	if err != nil {
		details := result.Diagnostics(err)
		if errors.Is(err, context.DeadlineExceeded) {
			details = fmt.Sprintf("timed out after %s", w.timeout)
		}
		return "", apperrors.NewExternalError("transcription failed", err).WithDetails(details)
	}

	return strings.TrimSpace(result.Stdout), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/process"
	"github.com/reelspot/backend/pkg/config"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/reelspot/backend/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	MsgDownloadFailed = providers.MsgDownloadFailed

	sampleRate = "16000"
	channels   = "1"
)

// YTDLPAcquirer downloads with yt-dlp and transcodes with ffmpeg
type YTDLPAcquirer struct {
	runner           process.Runner
	ytdlpPath        string
	ffmpegPath       string
	cookiesFile      string
	tempDir          string
	downloadTimeout  time.Duration
	transcodeTimeout time.Duration
}

var _ providers.MediaAcquirer = (*YTDLPAcquirer)(nil)

// NewYTDLPAcquirer creates an acquirer from media and timeout configuration
func NewYTDLPAcquirer(cfg config.MediaConfig, timeouts config.TimeoutConfig, runner process.Runner) *YTDLPAcquirer {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &YTDLPAcquirer{
		runner:           runner,
		ytdlpPath:        cfg.YTDLPPath,
		ffmpegPath:       cfg.FFmpegPath,
		cookiesFile:      cfg.CookiesFile,
		tempDir:          tempDir,
		downloadTimeout:  timeouts.Download,
		transcodeTimeout: timeouts.Transcode,
	}
}

// Acquire downloads rawURL and converts it to mono 16 kHz WAV.
// Any failure is an external error whose Details hold the tool's output.
func (a *YTDLPAcquirer) Acquire(ctx context.Context, rawURL string) (*entities.AudioArtifact, error) {
	sourceURL, err := utils.ValidateSourceURL(rawURL)
	if err != nil {
		return nil, err
	}

	videoPath, err := a.download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	audioPath, err := a.transcode(ctx, videoPath)
	if err != nil {
		if rmErr := os.Remove(videoPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", videoPath).Msg("Failed to remove downloaded video")
		}
		return nil, err
	}

	return &entities.AudioArtifact{VideoPath: videoPath, AudioPath: audioPath}, nil
}

func (a *YTDLPAcquirer) download(ctx context.Context, sourceURL string) (string, error) {
	template := filepath.Join(a.tempDir, "reel-"+uuid.NewString()+".%(ext)s")
	args := []string{"--no-playlist", "--no-simulate"}
	if a.cookiesFile != "" {
		args = append(args, "--cookies", a.cookiesFile)
	}
	args = append(args, "--print", "after_move:filepath", "-o", template, sourceURL)

	runCtx, cancel := withTimeout(ctx, a.downloadTimeout)
	defer cancel()

	result, err := a.runner.Run(runCtx, a.ytdlpPath, args...)
	if err != nil {
		return "", apperrors.NewExternalError(MsgDownloadFailed, err).WithDetails(diagnostics(result, err, a.downloadTimeout))
	}

	path := firstNonEmptyLine(result.Stdout)
	if path == "" {
		return "", apperrors.NewExternalError(MsgDownloadFailed, fmt.Errorf("yt-dlp reported no output file")).
			WithDetails(strings.TrimSpace(result.Stderr))
	}
	return path, nil
}

func (a *YTDLPAcquirer) transcode(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".wav"
	if audioPath == videoPath {
		audioPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".16k.wav"
	}

	runCtx, cancel := withTimeout(ctx, a.transcodeTimeout)
	defer cancel()

	result, err := a.runner.Run(runCtx, a.ffmpegPath,
		"-y", "-i", videoPath, "-ar", sampleRate, "-ac", channels, audioPath)
	if err != nil {
		return "", apperrors.NewExternalError(MsgDownloadFailed, fmt.Errorf("ffmpeg transcode: %w", err)).
			WithDetails(diagnostics(result, err, a.transcodeTimeout))
	}
	return audioPath, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func diagnostics(result process.Result, err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s", timeout)
	}
	return result.Diagnostics(err)
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

package providers

import (
	"context"

	"github.com/reelspot/backend/internal/domain/entities"
)

// MsgDownloadFailed is the caller-facing message for any fatal acquisition failure
const MsgDownloadFailed = "yt-dlp failed to download the video."

// MediaAcquirer downloads a video and converts it to mono 16 kHz audio
type MediaAcquirer interface {
	// Acquire fetches url and returns the local audio artifact.
	// The caller owns the artifact and must clean it up.
	Acquire(ctx context.Context, url string) (*entities.AudioArtifact, error)
}

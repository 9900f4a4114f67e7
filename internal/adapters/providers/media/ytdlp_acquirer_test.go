package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reelspot/backend/internal/infrastructure/process"
	"github.com/reelspot/backend/pkg/config"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	results map[string]process.Result
	errs    map[string]error
	block   map[string]bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (process.Result, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.block[name] {
		<-ctx.Done()
		return process.Result{}, ctx.Err()
	}
	return f.results[name], f.errs[name]
}

func newAcquirer(runner process.Runner, cookies string) *YTDLPAcquirer {
	return NewYTDLPAcquirer(
		config.MediaConfig{YTDLPPath: "yt-dlp", FFmpegPath: "ffmpeg", CookiesFile: cookies, TempDir: "/tmp/reels"},
		config.TimeoutConfig{Download: time.Second, Transcode: time.Second},
		runner,
	)
}

func TestYTDLPAcquirer_Acquire(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{
		"yt-dlp": {Stdout: "\n/tmp/reels/reel-1.mp4\n"},
	}}

	artifact, err := newAcquirer(runner, "").Acquire(context.Background(), "https://www.instagram.com/reel/xyz/")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reels/reel-1.mp4", artifact.VideoPath)
	assert.Equal(t, "/tmp/reels/reel-1.wav", artifact.AudioPath)

	require.Len(t, runner.calls, 2)
	download := runner.calls[0].args
	assert.Equal(t, []string{"--no-playlist", "--no-simulate", "--print", "after_move:filepath", "-o"}, download[:5])
	assert.True(t, strings.HasPrefix(download[5], "/tmp/reels/reel-"))
	assert.True(t, strings.HasSuffix(download[5], ".%(ext)s"))
	assert.Equal(t, "https://www.instagram.com/reel/xyz/", download[6])

	assert.Equal(t, "ffmpeg", runner.calls[1].name)
	assert.Equal(t, []string{"-y", "-i", "/tmp/reels/reel-1.mp4", "-ar", "16000", "-ac", "1", "/tmp/reels/reel-1.wav"}, runner.calls[1].args)
}

func TestYTDLPAcquirer_PassesCookies(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{"yt-dlp": {Stdout: "/tmp/reels/a.webm"}}}

	_, err := newAcquirer(runner, "/secrets/cookies.txt").Acquire(context.Background(), "https://youtu.be/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"--no-playlist", "--no-simulate", "--cookies", "/secrets/cookies.txt"}, runner.calls[0].args[:4])
}

func TestYTDLPAcquirer_RejectsNonHTTPWithoutRunningTools(t *testing.T) {
	runner := &fakeRunner{}

	_, err := newAcquirer(runner, "").Acquire(context.Background(), "ftp://example.com/clip")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, runner.calls)
}

func TestYTDLPAcquirer_DownloadFailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{
		results: map[string]process.Result{"yt-dlp": {Stderr: "ERROR: Unsupported URL\n"}},
		errs:    map[string]error{"yt-dlp": errors.New("yt-dlp exited with code 1")},
	}

	_, err := newAcquirer(runner, "").Acquire(context.Background(), "https://example.com/nope")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
	assert.Equal(t, MsgDownloadFailed, appErr.Message)
	assert.Equal(t, "ERROR: Unsupported URL", appErr.Details)
	assert.Len(t, runner.calls, 1, "ffmpeg must not run after a failed download")
}

func TestYTDLPAcquirer_NoFilePathIsFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{"yt-dlp": {Stdout: "  \n"}}}

	_, err := newAcquirer(runner, "").Acquire(context.Background(), "https://example.com/v")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestYTDLPAcquirer_TranscodeFailure(t *testing.T) {
	runner := &fakeRunner{
		results: map[string]process.Result{
			"yt-dlp": {Stdout: "/tmp/reels/none.mp4"},
			"ffmpeg": {Stderr: "Invalid data found when processing input"},
		},
		errs: map[string]error{"ffmpeg": errors.New("ffmpeg exited with code 1")},
	}

	_, err := newAcquirer(runner, "").Acquire(context.Background(), "https://example.com/v")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid data found when processing input", appErr.Details)
}

func TestYTDLPAcquirer_DownloadTimeout(t *testing.T) {
	runner := &fakeRunner{block: map[string]bool{"yt-dlp": true}}
	acquirer := NewYTDLPAcquirer(
		config.MediaConfig{YTDLPPath: "yt-dlp", FFmpegPath: "ffmpeg"},
		config.TimeoutConfig{Download: 20 * time.Millisecond, Transcode: time.Second},
		runner,
	)

	_, err := acquirer.Acquire(context.Background(), "https://example.com/slow")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "timed out")
}

func TestYTDLPAcquirer_WavSourceGetsDistinctOutput(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{"yt-dlp": {Stdout: "/tmp/reels/clip.wav"}}}

	artifact, err := newAcquirer(runner, "").Acquire(context.Background(), "https://example.com/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reels/clip.16k.wav", artifact.AudioPath)
}

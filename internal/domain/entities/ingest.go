package entities

import (
	"os"
)

// IngestRequest asks the pipeline to turn a video link into a marker
type IngestRequest struct {
	URL       string
	AccountID int64
}

// AudioArtifact is the downloaded video and its mono 16 kHz WAV rendition.
// It belongs to a single request.
type AudioArtifact struct {
	VideoPath string
	AudioPath string
}

// Cleanup removes both files. Missing files are ignored.
func (a *AudioArtifact) Cleanup() error {
	var firstErr error
	for _, p := range []string{a.AudioPath, a.VideoPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StageName identifies a step of the ingestion pipeline
type StageName string

const (
	StageValidating   StageName = "validating"
	StageAcquiring    StageName = "acquiring"
	StageTranscribing StageName = "transcribing"
	StageExtracting   StageName = "extracting"
	StageGeocoding    StageName = "geocoding"
	StagePersisting   StageName = "persisting"
)

// StageStatus is the outcome of one stage
type StageStatus string

const (
	StageStatusOK      StageStatus = "ok"
	StageStatusSkipped StageStatus = "skipped"
	StageStatusFailed  StageStatus = "failed"
)

// StageOutcome is the tagged result of a degradable stage. Value is only
// meaningful when Status is ok.
type StageOutcome[T any] struct {
	Status StageStatus
	Value  T
	Reason string
}

// Ok wraps a successful stage value
func Ok[T any](v T) StageOutcome[T] {
	return StageOutcome[T]{Status: StageStatusOK, Value: v}
}

// Skipped records that a stage did not run because its input was missing
func Skipped[T any](reason string) StageOutcome[T] {
	return StageOutcome[T]{Status: StageStatusSkipped, Reason: reason}
}

// Failed records a soft failure. The pipeline carries on without the value.
func Failed[T any](reason string) StageOutcome[T] {
	return StageOutcome[T]{Status: StageStatusFailed, Reason: reason}
}

// IsOK reports whether the stage produced a value
func (o StageOutcome[T]) IsOK() bool {
	return o.Status == StageStatusOK
}

// StageReport summarises one stage for the response and logs
type StageReport struct {
	Stage      StageName   `json:"stage"`
	Status     StageStatus `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	DurationMs int64       `json:"durationMs"`
}

// IngestResult is the completed pipeline response. Extracted and Marker are
// nil when their stage produced nothing; that is not an error.
type IngestResult struct {
	OK         bool                `json:"ok"`
	File       string              `json:"file"`
	Audio      string              `json:"audio"`
	Transcript string              `json:"transcript"`
	Extracted  *ExtractedPlaceInfo `json:"extracted"`
	Marker     *Marker             `json:"marker"`
	Stages     []StageReport       `json:"stages"`
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/reelspot/backend/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
)

// IngestionService turns a video link into a marker. Only validation and
// acquisition can fail the request; later stages degrade to empty fields.
type IngestionService struct {
	acquirer    providers.MediaAcquirer
	transcriber providers.Transcriber
	extractor   *PlaceExtractionService
	geocoder    *GeocodingService
	markers     *MarkerService
	metrics     *observability.Metrics
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	acquirer providers.MediaAcquirer,
	transcriber providers.Transcriber,
	extractor *PlaceExtractionService,
	geocoder *GeocodingService,
	markers *MarkerService,
	metrics *observability.Metrics,
) *IngestionService {
	return &IngestionService{
		acquirer:    acquirer,
		transcriber: transcriber,
		extractor:   extractor,
		geocoder:    geocoder,
		markers:     markers,
		metrics:     metrics,
	}
}

type stageRecorder struct {
	ctx     context.Context
	metrics *observability.Metrics
	reports []entities.StageReport
}

func (r *stageRecorder) record(stage entities.StageName, status entities.StageStatus, reason string, started time.Time) {
	elapsed := time.Since(started)
	r.reports = append(r.reports, entities.StageReport{
		Stage:      stage,
		Status:     status,
		Reason:     reason,
		DurationMs: elapsed.Milliseconds(),
	})
	observability.RecordStageMetric(r.ctx, r.metrics, string(stage), string(status), elapsed)

	event := observability.LoggerFromContext(r.ctx).Info()
	if status == entities.StageStatusFailed {
		event = observability.LoggerFromContext(r.ctx).Warn()
	}
	event.
		Str("stage", string(stage)).
		Str("status", string(status)).
		Str("reason", reason).
		Dur("duration", elapsed).
		Msg("Ingest stage finished")
}

func recordOutcome[T any](r *stageRecorder, stage entities.StageName, outcome entities.StageOutcome[T], started time.Time) {
	r.record(stage, outcome.Status, outcome.Reason, started)
}

// Ingest runs the pipeline for one request. A returned error is either a
// validation error, an external acquisition error carrying diagnostics, or
// an internal persistence error.
func (s *IngestionService) Ingest(ctx context.Context, req entities.IngestRequest) (*entities.IngestResult, error) {
	ctx, span := observability.StartSpan(ctx, "IngestionService.Ingest")
	defer span.End()

	rec := &stageRecorder{ctx: ctx, metrics: s.metrics}

	// Validating
	started := time.Now()
	sourceURL, err := utils.ValidateSourceURL(req.URL)
	if err != nil {
		rec.record(entities.StageValidating, entities.StageStatusFailed, err.Error(), started)
		return nil, err
	}
	if req.AccountID <= 0 {
		rec.record(entities.StageValidating, entities.StageStatusFailed, "missing account", started)
		return nil, apperrors.NewValidationError("account is required")
	}
	rec.record(entities.StageValidating, entities.StageStatusOK, "", started)
	observability.SetSpanAttributes(span, attribute.String("ingest.url", sourceURL), attribute.Int64("ingest.account_id", req.AccountID))

	// Acquiring
	started = time.Now()
	artifact, err := s.acquirer.Acquire(ctx, sourceURL)
	if err != nil {
		err = asAcquisitionError(err)
		rec.record(entities.StageAcquiring, entities.StageStatusFailed, err.Error(), started)
		observability.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if cleanupErr := artifact.Cleanup(); cleanupErr != nil {
			observability.LoggerFromContext(ctx).Warn().Err(cleanupErr).Msg("Failed to remove ingest artifacts")
		}
	}()
	rec.record(entities.StageAcquiring, entities.StageStatusOK, "", started)

	result := &entities.IngestResult{
		OK:    true,
		File:  artifact.VideoPath,
		Audio: artifact.AudioPath,
	}

	// Transcribing
	started = time.Now()
	transcript := s.transcribe(ctx, artifact.AudioPath)
	recordOutcome(rec, entities.StageTranscribing, transcript, started)
	if transcript.IsOK() {
		result.Transcript = transcript.Value
	}

	// Extracting
	started = time.Now()
	extracted := entities.Skipped[*entities.ExtractedPlaceInfo]("no transcript")
	if result.Transcript != "" {
		extracted = s.extractor.Extract(ctx, result.Transcript)
	}
	recordOutcome(rec, entities.StageExtracting, extracted, started)
	if extracted.IsOK() {
		result.Extracted = extracted.Value
	}

	// Geocoding
	started = time.Now()
	geocoded := entities.Skipped[*entities.GeocodedPlace]("no extracted place")
	if result.Extracted != nil {
		geocoded = s.geocoder.Geocode(ctx, result.Extracted)
	}
	recordOutcome(rec, entities.StageGeocoding, geocoded, started)

	// Persisting
	started = time.Now()
	if !geocoded.IsOK() {
		rec.record(entities.StagePersisting, entities.StageStatusSkipped, "no geocoded place", started)
		result.Stages = rec.reports
		return result, nil
	}

	marker, err := s.markers.Record(ctx, req.AccountID, geocoded.Value.Draft(), entities.MarkerEventSourceIngest)
	if err != nil {
		rec.record(entities.StagePersisting, entities.StageStatusFailed, err.Error(), started)
		observability.RecordError(span, err)
		return nil, err
	}
	rec.record(entities.StagePersisting, entities.StageStatusOK, "", started)

	result.Marker = marker
	result.Stages = rec.reports
	return result, nil
}

func (s *IngestionService) transcribe(ctx context.Context, audioPath string) entities.StageOutcome[string] {
	if s.transcriber == nil {
		return entities.Skipped[string]("no transcriber configured")
	}
	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		reason := err.Error()
		if appErr, ok := apperrors.As(err); ok && appErr.Details != "" {
			reason = fmt.Sprintf("%s: %s", appErr.Message, appErr.Details)
		}
		return entities.Failed[string](reason)
	}
	return entities.Ok(text)
}

// asAcquisitionError keeps caller-facing errors from the acquirer and wraps
// anything else as a download failure.
func asAcquisitionError(err error) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Type == apperrors.ErrorTypeValidation || appErr.Type == apperrors.ErrorTypeExternal {
			return appErr
		}
	}
	return apperrors.NewExternalError(providers.MsgDownloadFailed, err).WithDetails(err.Error())
}

package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/domain/repositories"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/reelspot/backend/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	MsgCoordinatesNotNumbers  = "Latitude and longitude must be numbers."
	MsgCoordinatesOutOfRange  = "Latitude or longitude out of range."
	MsgLoadMarkersFailed      = "Failed to load markers."
	MsgSaveMarkerFailed       = "Failed to save marker."
	MsgExportMarkersFailed    = "Failed to export markers."
	markerExportSheet         = "Markers"
	markerExportTimeFormat    = time.RFC3339
	markerEventPublishTimeout = 2 * time.Second
)

// MarkerInput is a manually submitted marker. Nil coordinates were not numbers.
type MarkerInput struct {
	Latitude  *float64
	Longitude *float64
	Name      string
	Address   string
	Emoji     string
}

// MarkerService owns marker creation, listing and export
type MarkerService struct {
	repo     repositories.MarkerRepository
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewMarkerService creates a new marker service. eventBus may be nil.
func NewMarkerService(repo repositories.MarkerRepository, eventBus providers.EventBus, metrics *observability.Metrics) *MarkerService {
	return &MarkerService{repo: repo, eventBus: eventBus, metrics: metrics}
}

// Create validates a manual marker and appends it
func (s *MarkerService) Create(ctx context.Context, accountID int64, input MarkerInput) (*entities.Marker, error) {
	if input.Latitude == nil || input.Longitude == nil || !isFinite(*input.Latitude) || !isFinite(*input.Longitude) {
		return nil, apperrors.NewValidationError(MsgCoordinatesNotNumbers)
	}
	if !entities.ValidCoordinates(*input.Latitude, *input.Longitude) {
		return nil, apperrors.NewValidationError(MsgCoordinatesOutOfRange)
	}

	draft := entities.MarkerDraft{
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Name:      input.Name,
		Address:   input.Address,
		Emoji:     input.Emoji,
	}
	return s.Record(ctx, accountID, draft, entities.MarkerEventSourceManual)
}

// Record appends a marker built from draft and announces it on the event bus.
// Publish failures are logged and do not fail the append.
func (s *MarkerService) Record(ctx context.Context, accountID int64, draft entities.MarkerDraft, source entities.MarkerEventSource) (*entities.Marker, error) {
	if !entities.ValidCoordinates(draft.Latitude, draft.Longitude) {
		return nil, apperrors.NewValidationError(MsgCoordinatesOutOfRange)
	}

	marker := &entities.Marker{
		AccountID: accountID,
		Latitude:  draft.Latitude,
		Longitude: draft.Longitude,
		Name:      strings.TrimSpace(draft.Name),
		Address:   strings.TrimSpace(draft.Address),
		Emoji:     normalizeMarkerEmoji(draft),
	}

	start := time.Now()
	err := s.repo.Append(ctx, marker)
	observability.RecordDBMetric(ctx, s.metrics, "markers.append", time.Since(start))
	if err != nil {
		return nil, apperrors.NewInternalError(MsgSaveMarkerFailed, err)
	}

	s.publish(ctx, marker, source)
	return marker, nil
}

// List returns the account's markers oldest first
func (s *MarkerService) List(ctx context.Context, accountID int64) ([]*entities.Marker, error) {
	start := time.Now()
	markers, err := s.repo.List(ctx, accountID)
	observability.RecordDBMetric(ctx, s.metrics, "markers.list", time.Since(start))
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadMarkersFailed, err)
	}
	if markers == nil {
		markers = []*entities.Marker{}
	}
	return markers, nil
}

// Export renders the account's markers as an xlsx workbook
func (s *MarkerService) Export(ctx context.Context, accountID int64) ([]byte, error) {
	markers, err := s.List(ctx, accountID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", markerExportSheet); err != nil {
		return nil, apperrors.NewInternalError(MsgExportMarkersFailed, err)
	}

	header := []interface{}{"ID", "Name", "Address", "Latitude", "Longitude", "Emoji", "Created At"}
	if err := f.SetSheetRow(markerExportSheet, "A1", &header); err != nil {
		return nil, apperrors.NewInternalError(MsgExportMarkersFailed, err)
	}

	for i, m := range markers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.NewInternalError(MsgExportMarkersFailed, err)
		}
		row := []interface{}{
			m.ID,
			m.Name,
			m.Address,
			m.Latitude,
			m.Longitude,
			m.Emoji,
			m.CreatedAt.UTC().Format(markerExportTimeFormat),
		}
		if err := f.SetSheetRow(markerExportSheet, cell, &row); err != nil {
			return nil, apperrors.NewInternalError(MsgExportMarkersFailed, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewInternalError(MsgExportMarkersFailed, err)
	}
	return buf.Bytes(), nil
}

func (s *MarkerService) publish(ctx context.Context, marker *entities.Marker, source entities.MarkerEventSource) {
	if s.eventBus == nil {
		return
	}

	// Publishing outlives the request context.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markerEventPublishTimeout)
	defer cancel()

	event := entities.NewMarkerCreatedEvent(marker, source)
	if err := s.eventBus.Publish(publishCtx, providers.GetAccountChannel(marker.AccountID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Int64("marker_id", marker.ID).
			Msg("Failed to publish marker event")
	}
}

// normalizeMarkerEmoji keeps symbols from the fixed set and otherwise
// reclassifies from the marker's own text.
func normalizeMarkerEmoji(draft entities.MarkerDraft) string {
	emoji := utils.NormalizeEmoji(draft.Emoji)
	if utils.IsKnownEmoji(emoji) {
		return emoji
	}
	return utils.ClassifyEmoji("", draft.Name+" "+draft.Address)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

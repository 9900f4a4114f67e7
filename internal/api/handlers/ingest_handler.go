package handlers

import (
	"context"
	"net/http"

	"github.com/reelspot/backend/internal/api/middleware"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
)

// Ingester runs the link-to-marker pipeline
type Ingester interface {
	Ingest(ctx context.Context, req entities.IngestRequest) (*entities.IngestResult, error)
}

// IngestHandler handles video link ingestion
type IngestHandler struct {
	ingester Ingester
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingester Ingester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

type ingestRequest struct {
	URL interface{} `json:"url"`
}

// Ingest handles POST /api/ingest
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	var req ingestRequest
	decodeBodyOrZero(r, &req)
	url, _ := stringValue(req.URL)

	result, err := h.ingester.Ingest(r.Context(), entities.IngestRequest{URL: url, AccountID: principal.UserID})
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Int64("user_id", principal.UserID).Msg("Ingest failed")
		respondWithAppError(w, err, providers.MsgDownloadFailed)
		return
	}
	respondWithJSON(w, http.StatusAccepted, result)
}

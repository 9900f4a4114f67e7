package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/reelspot/backend/internal/api/middleware"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/entities"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MarkerManager creates, lists and exports an account's markers
type MarkerManager interface {
	Create(ctx context.Context, accountID int64, input services.MarkerInput) (*entities.Marker, error)
	List(ctx context.Context, accountID int64) ([]*entities.Marker, error)
	Export(ctx context.Context, accountID int64) ([]byte, error)
}

// MarkerHandler handles marker endpoints
type MarkerHandler struct {
	markers MarkerManager
}

// NewMarkerHandler creates a new marker handler
func NewMarkerHandler(markers MarkerManager) *MarkerHandler {
	return &MarkerHandler{markers: markers}
}

type createMarkerRequest struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
	Name      interface{} `json:"name"`
	Address   interface{} `json:"address"`
	Emoji     interface{} `json:"emoji"`
}

// ListMarkers handles GET /api/markers
func (h *MarkerHandler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	markers, err := h.markers.List(r.Context(), principal.UserID)
	if err != nil {
		respondWithAppError(w, err, services.MsgLoadMarkersFailed)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"markers": markers,
	})
}

// CreateMarker handles POST /api/markers
func (h *MarkerHandler) CreateMarker(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	var req createMarkerRequest
	decodeBodyOrZero(r, &req)

	name, _ := stringValue(req.Name)
	address, _ := stringValue(req.Address)
	emoji, _ := stringValue(req.Emoji)

	marker, err := h.markers.Create(r.Context(), principal.UserID, services.MarkerInput{
		Latitude:  numberValue(req.Latitude),
		Longitude: numberValue(req.Longitude),
		Name:      name,
		Address:   address,
		Emoji:     emoji,
	})
	if err != nil {
		respondWithAppError(w, err, services.MsgSaveMarkerFailed)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"marker": marker,
	})
}

// ExportMarkers handles GET /api/markers/export
func (h *MarkerHandler) ExportMarkers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	data, err := h.markers.Export(r.Context(), principal.UserID)
	if err != nil {
		respondWithAppError(w, err, services.MsgExportMarkersFailed)
		return
	}

	filename := fmt.Sprintf("markers-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

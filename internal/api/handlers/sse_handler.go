package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/reelspot/backend/internal/api/middleware"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams an account's marker events as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   atomic.Int64
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{eventBus: eventBus, heartbeat: defaultHeartbeatInterval}
}

// StreamMarkers handles GET /api/markers/stream. The stream ends when the
// client goes away or the bus closes the subscription.
func (h *SSEHandler) StreamMarkers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)
	channel := providers.GetAccountChannel(principal.UserID)

	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to marker events")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to marker events")
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	h.clients.Add(1)
	defer h.clients.Add(-1)

	emit := func(id, name string, payload any) {
		if err := writeFrame(w, id, name, payload); err != nil {
			logger.Warn().Err(err).Str("event", name).Msg("Failed to write stream frame")
			return
		}
		flusher.Flush()
	}

	emit("", "connected", map[string]any{"user_id": principal.UserID, "timestamp": time.Now().UTC()})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("channel", channel).Msg("Client left marker stream")
			return
		case now := <-ticker.C:
			emit("", "heartbeat", map[string]any{"timestamp": now.UTC()})
		case event, open := <-events:
			if !open {
				logger.Debug().Str("channel", channel).Msg("Marker subscription closed")
				return
			}
			if event != nil {
				emit(event.ID, string(event.EventType), event)
			}
		}
	}
}

// writeFrame writes one event in text/event-stream framing
func writeFrame(w io.Writer, id, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(data)+len(name)+len(id)+24)
	if id != "" {
		frame = append(frame, "id: "+id+"\n"...)
	}
	frame = append(frame, "event: "+name+"\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	_, err = w.Write(frame)
	return err
}

// GetClientCount returns the number of open streams
func (h *SSEHandler) GetClientCount() int {
	return int(h.clients.Load())
}

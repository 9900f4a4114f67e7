package routes

import (
	"net/http"

	"github.com/reelspot/backend/internal/api/handlers"
	"github.com/reelspot/backend/internal/api/middleware"
	"github.com/reelspot/backend/internal/infrastructure/observability"
)

// Handlers groups the route handlers served by the API
type Handlers struct {
	Auth    *handlers.AuthHandler
	Ingest  *handlers.IngestHandler
	Markers *handlers.MarkerHandler
	Places  *handlers.PlacesHandler
	Stream  *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers       Handlers
	auth           middleware.TokenAuthenticator
	metrics        *observability.Metrics
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	h Handlers,
	auth middleware.TokenAuthenticator,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       h,
		auth:           auth,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"ok":true}` + "\n")); err != nil {
			return
		}
	})

	// Account endpoints
	r.mux.HandleFunc("POST /auth/register", r.handlers.Auth.Register)
	r.mux.HandleFunc("POST /auth/login", r.handlers.Auth.Login)

	// Places proxy endpoints
	r.mux.HandleFunc("GET /api/places", r.handlers.Places.SearchPlaces)
	r.mux.HandleFunc("GET /api/place-details", r.handlers.Places.PlaceDetails)

	// Authenticated endpoints
	requireAuth := middleware.RequireAuth(r.auth)

	r.mux.Handle("POST /api/ingest", requireAuth(http.HandlerFunc(r.handlers.Ingest.Ingest)))

	r.mux.Handle("GET /api/markers", requireAuth(http.HandlerFunc(r.handlers.Markers.ListMarkers)))
	r.mux.Handle("POST /api/markers", requireAuth(http.HandlerFunc(r.handlers.Markers.CreateMarker)))
	r.mux.Handle("GET /api/markers/export", requireAuth(http.HandlerFunc(r.handlers.Markers.ExportMarkers)))

	if r.handlers.Stream != nil {
		r.mux.Handle("GET /api/markers/stream", requireAuth(http.HandlerFunc(r.handlers.Stream.StreamMarkers)))
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

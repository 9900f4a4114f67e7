package handlers

import (
	"context"
	"net/http"

	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/entities"
)

// AccountService registers accounts and signs tokens
type AccountService interface {
	Register(ctx context.Context, username, password string) (*entities.AuthSession, error)
	Login(ctx context.Context, username, password string) (*entities.AuthSession, error)
}

// AuthHandler handles account endpoints
type AuthHandler struct {
	accounts AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type credentialsRequest struct {
	Username interface{} `json:"username"`
	Password interface{} `json:"password"`
}

func (c credentialsRequest) values() (string, string, bool) {
	username, okUser := stringValue(c.Username)
	password, okPass := stringValue(c.Password)
	return username, password, okUser && okPass
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	decodeBodyOrZero(r, &req)
	username, password, ok := req.values()
	if !ok {
		respondWithError(w, http.StatusBadRequest, services.MsgCredentialsRequired)
		return
	}

	session, err := h.accounts.Register(r.Context(), username, password)
	if err != nil {
		respondWithAppError(w, err, services.MsgCreateAccountFailed)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	decodeBodyOrZero(r, &req)
	username, password, ok := req.values()
	if !ok {
		respondWithError(w, http.StatusBadRequest, services.MsgCredentialsRequired)
		return
	}

	session, err := h.accounts.Login(r.Context(), username, password)
	if err != nil {
		respondWithAppError(w, err, services.MsgLoginFailed)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/repositories"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgCredentialsRequired = "Username and password are required."
	MsgCredentialsTooShort = "Username or password too short."
	MsgInvalidCredentials  = "Invalid username or password."
	MsgCreateAccountFailed = "Failed to create account."
	MsgLoginFailed         = "Failed to log in."
	MsgJWTSecretMissing    = "JWT secret not configured."
	MsgMissingToken        = "Missing auth token."
	MsgInvalidToken        = "Invalid auth token."

	minUsernameLength = 3
	minPasswordLength = 6
	bcryptCost        = 10
	defaultTokenTTL   = 7 * 24 * time.Hour
)

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService registers accounts and issues bearer tokens
type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates a new auth service. An empty secret disables
// token issuance and verification.
func NewAuthService(users repositories.UserRepository, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Configured reports whether a signing secret is present
func (s *AuthService) Configured() bool {
	return len(s.secret) > 0
}

// Register creates an account from trimmed credentials and signs a token for it
func (s *AuthService) Register(ctx context.Context, username, password string) (*entities.AuthSession, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if len(username) < minUsernameLength || len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError(MsgCredentialsTooShort)
	}
	if !s.Configured() {
		return nil, apperrors.NewInternalError(MsgJWTSecretMissing, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgCreateAccountFailed, err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return nil, err
		}
		return nil, apperrors.NewInternalError(MsgCreateAccountFailed, err)
	}

	return s.session(user, MsgCreateAccountFailed)
}

// Login checks credentials and signs a fresh token
func (s *AuthService) Login(ctx context.Context, username, password string) (*entities.AuthSession, error) {
	if !s.Configured() {
		return nil, apperrors.NewInternalError(MsgJWTSecretMissing, nil)
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
		}
		return nil, apperrors.NewInternalError(MsgLoginFailed, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
		}
		return nil, apperrors.NewInternalError(MsgLoginFailed, err)
	}

	return s.session(user, MsgLoginFailed)
}

// Authenticate verifies a bearer token and returns its principal
func (s *AuthService) Authenticate(token string) (*entities.Principal, error) {
	if !s.Configured() {
		return nil, apperrors.NewInternalError(MsgJWTSecretMissing, nil)
	}
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewUnauthorizedError(MsgMissingToken)
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.UserID <= 0 {
		return nil, apperrors.NewUnauthorizedError(MsgInvalidToken)
	}

	return &entities.Principal{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *AuthService) session(user *entities.User, failure string) (*entities.AuthSession, error) {
	token, err := s.issue(user)
	if err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}
	return &entities.AuthSession{
		Token: token,
		User:  entities.UserSummary{ID: user.ID, Username: user.Username},
	}, nil
}

func (s *AuthService) issue(user *entities.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

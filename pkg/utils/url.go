package utils

import (
	"net/url"
	"strings"

	apperrors "github.com/reelspot/backend/pkg/errors"
)

// Client-facing validation messages for source links
const (
	MsgMissingURL        = "Missing url."
	MsgInvalidURL        = "Invalid url."
	MsgUnsupportedScheme = "Invalid url protocol."
)

// ValidateSourceURL trims raw and checks it is an absolute http or https URL.
// Failures are validation errors carrying a client-facing message.
func ValidateSourceURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.NewValidationError(MsgMissingURL)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" {
		return "", apperrors.NewValidationError(MsgInvalidURL)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", apperrors.NewValidationError(MsgUnsupportedScheme)
	}
	if parsed.Host == "" {
		return "", apperrors.NewValidationError(MsgInvalidURL)
	}
	return trimmed, nil
}

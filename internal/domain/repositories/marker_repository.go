package repositories

import (
	"context"

	"github.com/reelspot/backend/internal/domain/entities"
)

// MarkerRepository is the append-only marker store
type MarkerRepository interface {
	// Append assigns a fresh ID and creation time to marker and persists it.
	// IDs are never reused.
	Append(ctx context.Context, marker *entities.Marker) error

	// List returns the account's markers ordered by ascending ID
	List(ctx context.Context, accountID int64) ([]*entities.Marker, error)
}

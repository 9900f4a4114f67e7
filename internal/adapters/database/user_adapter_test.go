package database

import (
	"context"
	"testing"

	"github.com/reelspot/backend/internal/domain/entities"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdapter_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	adapter := NewUserAdapter(newSQLiteClient(t))

	user := &entities.User{Username: "mapfan", PasswordHash: "hash"}
	require.NoError(t, adapter.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byName, err := adapter.GetByUsername(ctx, "mapfan")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := adapter.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "mapfan", byID.Username)
}

func TestUserAdapter_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	adapter := NewUserAdapter(newSQLiteClient(t))

	require.NoError(t, adapter.Create(ctx, &entities.User{Username: "mapfan", PasswordHash: "a"}))
	err := adapter.Create(ctx, &entities.User{Username: "mapfan", PasswordHash: "b"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestUserAdapter_NotFound(t *testing.T) {
	adapter := NewUserAdapter(newSQLiteClient(t))

	_, err := adapter.GetByUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

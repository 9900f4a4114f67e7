package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/entities"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/reelspot/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func float(v float64) *float64 {
	return &v
}

func TestMarkerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores defaults and normalizes emoji", func(t *testing.T) {
		repo := new(MockMarkerRepository)
		assignIDs(repo, 1)
		service := services.NewMarkerService(repo, nil, nil)

		marker, err := service.Create(ctx, 7, services.MarkerInput{Latitude: float(43.6532), Longitude: float(-79.3832)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), marker.ID)
		assert.Equal(t, int64(7), marker.AccountID)
		assert.Equal(t, 43.6532, marker.Latitude)
		assert.Equal(t, -79.3832, marker.Longitude)
		assert.Equal(t, "", marker.Name)
		assert.Equal(t, "", marker.Address)
		assert.Equal(t, utils.EmojiPin, marker.Emoji)
	})

	t.Run("reclassifies unknown emoji from the name", func(t *testing.T) {
		repo := new(MockMarkerRepository)
		assignIDs(repo, 1)
		service := services.NewMarkerService(repo, nil, nil)

		marker, err := service.Create(ctx, 7, services.MarkerInput{
			Latitude: float(1), Longitude: float(1), Name: "Sushi Nakazawa", Emoji: "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, utils.EmojiSushi, marker.Emoji)
	})

	t.Run("keeps a known emoji", func(t *testing.T) {
		repo := new(MockMarkerRepository)
		assignIDs(repo, 1)
		service := services.NewMarkerService(repo, nil, nil)

		marker, err := service.Create(ctx, 7, services.MarkerInput{
			Latitude: float(1), Longitude: float(1), Name: "Sushi Nakazawa", Emoji: " " + utils.EmojiBar + " ",
		})
		require.NoError(t, err)
		assert.Equal(t, utils.EmojiBar, marker.Emoji)
	})

	invalid := []struct {
		name  string
		input services.MarkerInput
		msg   string
	}{
		{"missing latitude", services.MarkerInput{Longitude: float(1)}, services.MsgCoordinatesNotNumbers},
		{"missing longitude", services.MarkerInput{Latitude: float(1)}, services.MsgCoordinatesNotNumbers},
		{"latitude just above range", services.MarkerInput{Latitude: float(90.0001), Longitude: float(0)}, services.MsgCoordinatesOutOfRange},
		{"longitude below range", services.MarkerInput{Latitude: float(0), Longitude: float(-180.5)}, services.MsgCoordinatesOutOfRange},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMarkerRepository)
			service := services.NewMarkerService(repo, nil, nil)

			_, err := service.Create(ctx, 7, tt.input)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.msg, appErr.Message)
			repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}

	t.Run("boundary coordinates are accepted", func(t *testing.T) {
		repo := new(MockMarkerRepository)
		assignIDs(repo, 1)
		service := services.NewMarkerService(repo, nil, nil)

		_, err := service.Create(ctx, 7, services.MarkerInput{Latitude: float(-90), Longitude: float(180)})
		assert.NoError(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockMarkerRepository)
		repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		service := services.NewMarkerService(repo, nil, nil)

		_, err := service.Create(ctx, 7, services.MarkerInput{Latitude: float(1), Longitude: float(1)})
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
		assert.Equal(t, services.MsgSaveMarkerFailed, appErr.Message)
	})
}

func TestMarkerService_RecordPublishesEvent(t *testing.T) {
	repo := new(MockMarkerRepository)
	assignIDs(repo, 42)
	bus := new(MockEventBus)
	bus.On("Publish", mock.Anything, "markers:account:7", mock.MatchedBy(func(e *entities.MarkerEvent) bool {
		return e.EventType == entities.MarkerEventTypeCreated &&
			e.Source == entities.MarkerEventSourceIngest &&
			e.Marker.ID == 42
	})).Return(nil)
	service := services.NewMarkerService(repo, bus, nil)

	_, err := service.Record(context.Background(), 7, entities.MarkerDraft{Latitude: 1, Longitude: 2, Emoji: utils.EmojiCoffee}, entities.MarkerEventSourceIngest)
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestMarkerService_RecordIgnoresPublishFailure(t *testing.T) {
	repo := new(MockMarkerRepository)
	assignIDs(repo, 1)
	bus := new(MockEventBus)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	service := services.NewMarkerService(repo, bus, nil)

	marker, err := service.Record(context.Background(), 7, entities.MarkerDraft{Latitude: 1, Longitude: 2}, entities.MarkerEventSourceManual)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marker.ID)
}

func TestMarkerService_List(t *testing.T) {
	repo := new(MockMarkerRepository)
	repo.On("List", mock.Anything, int64(7)).Return(nil, nil).Once()
	repo.On("List", mock.Anything, int64(8)).Return(nil, errors.New("locked"))
	service := services.NewMarkerService(repo, nil, nil)

	markers, err := service.List(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, markers)
	assert.Empty(t, markers)

	_, err = service.List(context.Background(), 8)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, services.MsgLoadMarkersFailed, appErr.Message)
}

func TestMarkerService_Export(t *testing.T) {
	repo := new(MockMarkerRepository)
	repo.On("List", mock.Anything, int64(7)).Return([]*entities.Marker{
		{ID: 1, Name: "Joe's Pizza", Address: "7 Carmine St", Latitude: 40.73, Longitude: -74.0, Emoji: utils.EmojiPizza, CreatedAt: fixedNow},
		{ID: 2, Name: "Ichiran", Address: "Shibuya", Latitude: 35.66, Longitude: 139.7, Emoji: utils.EmojiRamen, CreatedAt: fixedNow},
	}, nil)
	service := services.NewMarkerService(repo, nil, nil)

	data, err := service.Export(context.Background(), 7)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Markers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Address", "Latitude", "Longitude", "Emoji", "Created At"}, rows[0])
	assert.Equal(t, "Joe's Pizza", rows[1][1])
	assert.Equal(t, utils.EmojiRamen, rows[2][5])
	assert.Equal(t, "2026-03-14T12:00:00Z", rows[2][6])
}

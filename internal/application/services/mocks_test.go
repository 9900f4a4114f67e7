package services_test

import (
	"context"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/stretchr/testify/mock"
)

// Mocks

type MockMarkerRepository struct {
	mock.Mock
}

func (m *MockMarkerRepository) Append(ctx context.Context, marker *entities.Marker) error {
	args := m.Called(ctx, marker)
	return args.Error(0)
}

func (m *MockMarkerRepository) List(ctx context.Context, accountID int64) ([]*entities.Marker, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Marker), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Name() string {
	return "mock"
}

type MockPlaceSearchProvider struct {
	mock.Mock
}

func (m *MockPlaceSearchProvider) TextSearch(ctx context.Context, query string) ([]entities.PlaceCandidate, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PlaceCandidate), args.Error(1)
}

func (m *MockPlaceSearchProvider) Autocomplete(ctx context.Context, input, sessionToken string) (*providers.RawPlacesResponse, error) {
	args := m.Called(ctx, input, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.RawPlacesResponse), args.Error(1)
}

func (m *MockPlaceSearchProvider) Details(ctx context.Context, placeID, sessionToken string) (*providers.RawPlacesResponse, error) {
	args := m.Called(ctx, placeID, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.RawPlacesResponse), args.Error(1)
}

type MockMediaAcquirer struct {
	mock.Mock
}

func (m *MockMediaAcquirer) Acquire(ctx context.Context, url string) (*entities.AudioArtifact, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AudioArtifact), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	args := m.Called(ctx, audioPath)
	return args.String(0), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.MarkerEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.MarkerEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.MarkerEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return nil
}

// assignIDs mimics the store filling ID and CreatedAt on append
func assignIDs(repo *MockMarkerRepository, firstID int64) {
	next := firstID
	repo.On("Append", mock.Anything, mock.AnythingOfType("*entities.Marker")).Run(func(args mock.Arguments) {
		marker := args.Get(1).(*entities.Marker)
		marker.ID = next
		marker.CreatedAt = fixedNow
		next++
	}).Return(nil)
}

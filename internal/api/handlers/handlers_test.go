package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reelspot/backend/internal/api/middleware"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	session  *entities.AuthSession
	err      error
	username string
	password string
}

func (f *fakeAccounts) Register(ctx context.Context, username, password string) (*entities.AuthSession, error) {
	f.username, f.password = username, password
	return f.session, f.err
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (*entities.AuthSession, error) {
	f.username, f.password = username, password
	return f.session, f.err
}

type fakeIngester struct {
	result *entities.IngestResult
	err    error
	req    entities.IngestRequest
}

func (f *fakeIngester) Ingest(ctx context.Context, req entities.IngestRequest) (*entities.IngestResult, error) {
	f.req = req
	return f.result, f.err
}

type fakeMarkers struct {
	markers   []*entities.Marker
	created   *entities.Marker
	export    []byte
	err       error
	accountID int64
	input     services.MarkerInput
}

func (f *fakeMarkers) Create(ctx context.Context, accountID int64, input services.MarkerInput) (*entities.Marker, error) {
	f.accountID, f.input = accountID, input
	return f.created, f.err
}

func (f *fakeMarkers) List(ctx context.Context, accountID int64) ([]*entities.Marker, error) {
	f.accountID = accountID
	return f.markers, f.err
}

func (f *fakeMarkers) Export(ctx context.Context, accountID int64) ([]byte, error) {
	f.accountID = accountID
	return f.export, f.err
}

type fakePlaces struct {
	resp         *providers.RawPlacesResponse
	err          error
	input        string
	sessionToken string
	hang         bool
}

// TextSearch blocks until ctx ends when hang is set
func (f *fakePlaces) TextSearch(ctx context.Context, query string) ([]entities.PlaceCandidate, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return nil, nil
}

func (f *fakePlaces) Autocomplete(ctx context.Context, input, sessionToken string) (*providers.RawPlacesResponse, error) {
	f.input, f.sessionToken = input, sessionToken
	return f.resp, f.err
}

func (f *fakePlaces) Details(ctx context.Context, placeID, sessionToken string) (*providers.RawPlacesResponse, error) {
	f.input, f.sessionToken = placeID, sessionToken
	return f.resp, f.err
}

func authed(r *http.Request, userID int64) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), &entities.Principal{UserID: userID, Username: "sam"}))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	session := &entities.AuthSession{Token: "tok", User: entities.UserSummary{ID: 1, Username: "sam"}}

	t.Run("created", func(t *testing.T) {
		accounts := &fakeAccounts{session: session}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Register(rec, jsonRequest(http.MethodPost, "/auth/register", `{"username":"sam","password":"secret"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "tok", body["token"])
		assert.Equal(t, "sam", body["user"].(map[string]interface{})["username"])
		assert.Equal(t, "sam", accounts.username)
		assert.Equal(t, "secret", accounts.password)
	})

	t.Run("non-string fields", func(t *testing.T) {
		accounts := &fakeAccounts{session: session}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Register(rec, jsonRequest(http.MethodPost, "/auth/register", `{"username":5,"password":"secret"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, services.MsgCredentialsRequired, decodeBody(t, rec)["error"])
		assert.Empty(t, accounts.username)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewAuthHandler(&fakeAccounts{}).Register(rec, jsonRequest(http.MethodPost, "/auth/register", ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate username", func(t *testing.T) {
		accounts := &fakeAccounts{err: apperrors.NewConflictError("Username already exists.")}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Register(rec, jsonRequest(http.MethodPost, "/auth/register", `{"username":"sam","password":"secret"}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Username already exists.", decodeBody(t, rec)["error"])
	})

	t.Run("unclassified failure", func(t *testing.T) {
		accounts := &fakeAccounts{err: errors.New("disk full")}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Register(rec, jsonRequest(http.MethodPost, "/auth/register", `{"username":"sam","password":"secret"}`))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, services.MsgCreateAccountFailed, decodeBody(t, rec)["error"])
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		accounts := &fakeAccounts{session: &entities.AuthSession{Token: "tok"}}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Login(rec, jsonRequest(http.MethodPost, "/auth/login", `{"username":"sam","password":"secret"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok", decodeBody(t, rec)["token"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		accounts := &fakeAccounts{err: apperrors.NewUnauthorizedError(services.MsgInvalidCredentials)}
		rec := httptest.NewRecorder()
		NewAuthHandler(accounts).Login(rec, jsonRequest(http.MethodPost, "/auth/login", `{"username":"sam","password":"nope"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, services.MsgInvalidCredentials, decodeBody(t, rec)["error"])
	})
}

func TestIngestHandler_Ingest(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		ingester := &fakeIngester{result: &entities.IngestResult{OK: true, Transcript: "hello"}}
		rec := httptest.NewRecorder()
		req := authed(jsonRequest(http.MethodPost, "/api/ingest", `{"url":"https://example.com/v/1"}`), 7)
		NewIngestHandler(ingester).Ingest(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "hello", body["transcript"])
		assert.Nil(t, body["marker"])
		assert.Equal(t, "https://example.com/v/1", ingester.req.URL)
		assert.Equal(t, int64(7), ingester.req.AccountID)
	})

	t.Run("validation failure", func(t *testing.T) {
		ingester := &fakeIngester{err: apperrors.NewValidationError("Missing url.")}
		rec := httptest.NewRecorder()
		NewIngestHandler(ingester).Ingest(rec, authed(jsonRequest(http.MethodPost, "/api/ingest", `{}`), 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing url.", decodeBody(t, rec)["error"])
	})

	t.Run("malformed body reaches validation as empty", func(t *testing.T) {
		ingester := &fakeIngester{err: apperrors.NewValidationError("Missing url.")}
		rec := httptest.NewRecorder()
		NewIngestHandler(ingester).Ingest(rec, authed(jsonRequest(http.MethodPost, "/api/ingest", `{"url":"https://exa`), 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "", ingester.req.URL)
	})

	t.Run("download failure carries details", func(t *testing.T) {
		ingester := &fakeIngester{err: apperrors.NewExternalError(providers.MsgDownloadFailed, nil).WithDetails("ERROR: unsupported URL")}
		rec := httptest.NewRecorder()
		NewIngestHandler(ingester).Ingest(rec, authed(jsonRequest(http.MethodPost, "/api/ingest", `{"url":"https://example.com"}`), 7))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, providers.MsgDownloadFailed, body["error"])
		assert.Equal(t, "ERROR: unsupported URL", body["details"])
	})

	t.Run("download failure without details", func(t *testing.T) {
		ingester := &fakeIngester{err: apperrors.NewExternalError(providers.MsgDownloadFailed, nil)}
		rec := httptest.NewRecorder()
		NewIngestHandler(ingester).Ingest(rec, authed(jsonRequest(http.MethodPost, "/api/ingest", `{"url":"https://example.com"}`), 7))

		body := decodeBody(t, rec)
		value, present := body["details"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewIngestHandler(&fakeIngester{}).Ingest(rec, jsonRequest(http.MethodPost, "/api/ingest", `{}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMarkerHandler(t *testing.T) {
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		markers := &fakeMarkers{markers: []*entities.Marker{{ID: 1, AccountID: 3, Latitude: 1, Longitude: 2, Name: "Cafe", Emoji: "☕", CreatedAt: created}}}
		rec := httptest.NewRecorder()
		NewMarkerHandler(markers).ListMarkers(rec, authed(httptest.NewRequest(http.MethodGet, "/api/markers", nil), 3))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), markers.accountID)
		list := decodeBody(t, rec)["markers"].([]interface{})
		require.Len(t, list, 1)
		first := list[0].(map[string]interface{})
		assert.Equal(t, "Cafe", first["name"])
		assert.Equal(t, "2026-03-14T12:00:00Z", first["createdAt"])
		assert.NotContains(t, first, "AccountID")
	})

	t.Run("list failure", func(t *testing.T) {
		markers := &fakeMarkers{err: apperrors.NewInternalError(services.MsgLoadMarkersFailed, errors.New("boom"))}
		rec := httptest.NewRecorder()
		NewMarkerHandler(markers).ListMarkers(rec, authed(httptest.NewRequest(http.MethodGet, "/api/markers", nil), 3))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, services.MsgLoadMarkersFailed, decodeBody(t, rec)["error"])
	})

	t.Run("create passes numbers through", func(t *testing.T) {
		markers := &fakeMarkers{created: &entities.Marker{ID: 9, Latitude: 10.5, Longitude: -3, Name: "Spot"}}
		rec := httptest.NewRecorder()
		req := authed(jsonRequest(http.MethodPost, "/api/markers", `{"latitude":10.5,"longitude":-3,"name":"Spot","emoji":"🍕"}`), 3)
		NewMarkerHandler(markers).CreateMarker(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, markers.input.Latitude)
		require.NotNil(t, markers.input.Longitude)
		assert.Equal(t, 10.5, *markers.input.Latitude)
		assert.Equal(t, -3.0, *markers.input.Longitude)
		assert.Equal(t, "🍕", markers.input.Emoji)
		marker := decodeBody(t, rec)["marker"].(map[string]interface{})
		assert.Equal(t, float64(9), marker["id"])
	})

	t.Run("create with string coordinates", func(t *testing.T) {
		markers := &fakeMarkers{err: apperrors.NewValidationError(services.MsgCoordinatesNotNumbers)}
		rec := httptest.NewRecorder()
		req := authed(jsonRequest(http.MethodPost, "/api/markers", `{"latitude":"10","longitude":2}`), 3)
		NewMarkerHandler(markers).CreateMarker(rec, req)

		assert.Nil(t, markers.input.Latitude)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, services.MsgCoordinatesNotNumbers, decodeBody(t, rec)["error"])
	})

	t.Run("export", func(t *testing.T) {
		markers := &fakeMarkers{export: []byte("PK\x03\x04")}
		rec := httptest.NewRecorder()
		NewMarkerHandler(markers).ExportMarkers(rec, authed(httptest.NewRequest(http.MethodGet, "/api/markers/export", nil), 3))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"markers-")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})
}

func TestPlacesHandler(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewPlacesHandler(&fakePlaces{}).SearchPlaces(rec, httptest.NewRequest(http.MethodGet, "/api/places?query=%20", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "INVALID_REQUEST", body["status"])
		assert.Equal(t, "Missing query parameter.", body["error_message"])
	})

	t.Run("missing place id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewPlacesHandler(&fakePlaces{}).PlaceDetails(rec, httptest.NewRequest(http.MethodGet, "/api/place-details", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing placeId parameter.", decodeBody(t, rec)["error_message"])
	})

	t.Run("passes upstream body through", func(t *testing.T) {
		places := &fakePlaces{resp: &providers.RawPlacesResponse{StatusCode: http.StatusOK, Body: []byte(`{"status":"OK","predictions":[]}`)}}
		rec := httptest.NewRecorder()
		NewPlacesHandler(places).SearchPlaces(rec, httptest.NewRequest(http.MethodGet, "/api/places?query=pizza&sessionToken=abc", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK","predictions":[]}`, rec.Body.String())
		assert.Equal(t, "pizza", places.input)
		assert.Equal(t, "abc", places.sessionToken)
	})

	t.Run("keeps upstream status", func(t *testing.T) {
		places := &fakePlaces{resp: &providers.RawPlacesResponse{StatusCode: http.StatusForbidden, Body: []byte(`{"status":"REQUEST_DENIED"}`)}}
		rec := httptest.NewRecorder()
		NewPlacesHandler(places).PlaceDetails(rec, httptest.NewRequest(http.MethodGet, "/api/place-details?placeId=p1", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "p1", places.input)
	})

	t.Run("missing key", func(t *testing.T) {
		places := &fakePlaces{err: providers.ErrPlacesAPIKeyMissing}
		rec := httptest.NewRecorder()
		NewPlacesHandler(places).SearchPlaces(rec, httptest.NewRequest(http.MethodGet, "/api/places?query=pizza", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "SERVER_ERROR", body["status"])
		assert.Equal(t, "Missing GOOGLE_PLACES_API_KEY.", body["error_message"])
	})

	t.Run("unreachable", func(t *testing.T) {
		places := &fakePlaces{err: errors.New("dial tcp: connection refused")}
		rec := httptest.NewRecorder()
		NewPlacesHandler(places).SearchPlaces(rec, httptest.NewRequest(http.MethodGet, "/api/places?query=pizza", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to reach Google Places.", decodeBody(t, rec)["error_message"])
	})
}

func TestDecodeBodyOrZero(t *testing.T) {
	type body struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	var ok body
	decodeBodyOrZero(jsonRequest(http.MethodPost, "/", `{"a":1,"b":2}`), &ok)
	assert.Equal(t, body{A: 1, B: 2}, ok)

	// a type mismatch on b still fills a before failing
	var mismatched body
	decodeBodyOrZero(jsonRequest(http.MethodPost, "/", `{"a":1,"b":"two"}`), &mismatched)
	assert.Equal(t, body{}, mismatched)

	var empty body
	decodeBodyOrZero(jsonRequest(http.MethodPost, "/", ``), &empty)
	assert.Equal(t, body{}, empty)
}

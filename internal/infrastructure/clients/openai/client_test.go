package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", Options{BaseURL: server.URL + "/v1", RateLimitRPM: -1})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("  ", Options{})
	assert.Error(t, err)
}

func TestGenerate_ReturnsCompletionContent(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"Joe's Pizza\"}"},"finish_reason":"stop"}]}`))
	})

	out, err := client.Generate(context.Background(), "Transcript: best pizza")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Joe's Pizza"}`, out)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	format, ok := captured["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "Transcript: best pizza", messages[1].(map[string]interface{})["content"])
}

func TestGenerate_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGenerate_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusCode(err))
}

func TestTranscribe_UploadsFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  try the tacos at Casa Luna  "}`))
	})

	audio := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o600))

	text, err := client.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "try the tacos at Casa Luna", text)
}

func TestNewLimiter_WaitHonoursContext(t *testing.T) {
	limiter := newLimiter(1, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx))
}

func TestNewLimiter_Defaults(t *testing.T) {
	assert.Nil(t, newLimiter(-1, 0))

	limiter := newLimiter(0, 0)
	require.NotNil(t, limiter)
	assert.Equal(t, defaultBurst, limiter.Burst())
	assert.InDelta(t, float64(defaultRPM)/60, float64(limiter.Limit()), 1e-9)
}

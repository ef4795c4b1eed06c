package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/voxflow/internal/fault"
)

func TestNewClient(t *testing.T) {
	t.Run("defaults base URL", func(t *testing.T) {
		c := NewClient("")
		assert.Equal(t, DefaultBaseURL, c.baseURL)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c := NewClient("http://localhost:5000/")
		assert.Equal(t, "http://localhost:5000", c.baseURL)
	})
}

func TestClient_SetService(t *testing.T) {
	t.Run("successful activation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/api/set-service", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req SetServiceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "elevenlabs", req.Service)
			assert.Equal(t, "sk-test", req.APIKey)
			assert.True(t, req.SaveToEnv)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success", "service": "elevenlabs"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.SetService(context.Background(), SetServiceRequest{
			Service:   "elevenlabs",
			APIKey:    "sk-test",
			SaveToEnv: true,
		})

		assert.NoError(t, err)
	})

	t.Run("rejection carries upstream message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "ElevenLabs API key is not set"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.SetService(context.Background(), SetServiceRequest{Service: "elevenlabs"})

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindActivationRejected))
		assert.Equal(t, "ElevenLabs API key is not set", fault.UserMessage(err))
	})

	t.Run("non-JSON error body is a transport fault", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>502 Bad Gateway</html>"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.SetService(context.Background(), SetServiceRequest{Service: "elevenlabs"})

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindTransport))
		assert.False(t, fault.IsKind(err, fault.KindActivationRejected))
	})

	t.Run("unreachable backend is a transport fault", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1")
		err := c.SetService(context.Background(), SetServiceRequest{Service: "edge_tts"})

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindTransport))
	})
}

func TestClient_Voices(t *testing.T) {
	t.Run("returns raw entries undecoded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/api/voices", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"voices": [{"Name": "en-US-JennyNeural", "ShortName": "Jenny"}, {"Name": "fr-FR-DeniseNeural"}]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		voices, err := c.Voices(context.Background())

		require.NoError(t, err)
		require.Len(t, voices, 2)
		assert.Contains(t, string(voices[0]), "JennyNeural")
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "LemonFox API key is not set"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Voices(context.Background())

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindCatalogFetch))
	})

	t.Run("non-JSON success body is a transport fault", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("proxy placeholder page"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Voices(context.Background())

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindTransport))
	})
}

func TestClient_Credits(t *testing.T) {
	t.Run("payload preserved verbatim", func(t *testing.T) {
		payload := `{"character_count": 1200, "character_limit": 10000, "remaining_characters": 8800}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/credits", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(payload))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		raw, err := c.Credits(context.Background())

		require.NoError(t, err)
		assert.JSONEq(t, payload, string(raw))
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "ElevenLabs API key is not set"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Credits(context.Background())

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindCreditsFetch))
	})
}

func TestClient_Speech(t *testing.T) {
	t.Run("returns audio bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/api/tts", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Hello world", req["text"])
			assert.Equal(t, "en-US-JennyNeural", req["voice_id"])

			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("mock audio data"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		audio, err := c.Speech(context.Background(), "Hello world", "en-US-JennyNeural")

		require.NoError(t, err)
		assert.Equal(t, "mock audio data", string(audio))
	})

	t.Run("upstream failure carries the message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "ElevenLabs error: 401, unauthorized"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Speech(context.Background(), "Hello", "v1")

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindGeneration))
		assert.Contains(t, fault.UserMessage(err), "401")
	})
}

func TestClient_KeyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get-api-keys", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elevenlabs": true, "lemonfox": false}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	status, err := c.KeyStatus(context.Background())

	require.NoError(t, err)
	assert.True(t, status["elevenlabs"])
	assert.False(t, status["lemonfox"])
}

func TestClient_ClearKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/clear-api-key", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lemonfox", req["service"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	assert.NoError(t, c.ClearKey(context.Background(), "lemonfox"))
}

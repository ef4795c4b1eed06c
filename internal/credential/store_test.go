package credential

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/fault"
	"github.com/daikw/voxflow/internal/provider"
)

func TestStore_SetAndValue(t *testing.T) {
	s := NewStore(backend.NewClient(""))

	assert.Empty(t, s.Value(provider.ElevenLabs))

	s.Set(provider.ElevenLabs, "sk-first")
	s.Set(provider.ElevenLabs, "sk-second")

	assert.Equal(t, "sk-second", s.Value(provider.ElevenLabs))
	assert.False(t, s.Persisted(provider.ElevenLabs), "setting a value must not touch the persisted flag")
}

func TestStore_Activate(t *testing.T) {
	t.Run("sends the in-memory credential", func(t *testing.T) {
		var got backend.SetServiceRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		s.Set(provider.ElevenLabs, "sk-test")

		err := s.Activate(context.Background(), ActivationRequest{
			Provider: provider.ElevenLabs,
			Persist:  true,
		})

		require.NoError(t, err)
		assert.Equal(t, "elevenlabs", got.Service)
		assert.Equal(t, "sk-test", got.APIKey)
		assert.True(t, got.SaveToEnv)
		assert.True(t, s.Persisted(provider.ElevenLabs))
	})

	t.Run("reuse-stored sends an empty credential", func(t *testing.T) {
		var got backend.SetServiceRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		s.Set(provider.LemonFox, "lf-entered-this-session")

		err := s.Activate(context.Background(), ActivationRequest{
			Provider:    provider.LemonFox,
			ReuseStored: true,
		})

		require.NoError(t, err)
		assert.Empty(t, got.APIKey)
	})

	t.Run("credential-free provider never sends a key", func(t *testing.T) {
		var got backend.SetServiceRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		s.Set(provider.EdgeTTS, "should-not-be-sent")

		err := s.Activate(context.Background(), ActivationRequest{Provider: provider.EdgeTTS, Persist: true})

		require.NoError(t, err)
		assert.Empty(t, got.APIKey)
		assert.False(t, s.Persisted(provider.EdgeTTS), "no key sent, so nothing was persisted")
	})

	t.Run("persist without a value leaves the flag unset", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))

		err := s.Activate(context.Background(), ActivationRequest{Provider: provider.ElevenLabs, Persist: true})

		require.NoError(t, err)
		assert.False(t, s.Persisted(provider.ElevenLabs))
	})

	t.Run("rejection does not flip the flag", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid API key"}`))
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		s.Set(provider.ElevenLabs, "sk-bad")

		err := s.Activate(context.Background(), ActivationRequest{Provider: provider.ElevenLabs, Persist: true})

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindActivationRejected))
		assert.False(t, s.Persisted(provider.ElevenLabs))
	})

	t.Run("unknown provider fails without a network call", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		err := s.Activate(context.Background(), ActivationRequest{Provider: "acme_tts"})

		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindUnknownProvider))
		assert.Zero(t, calls.Load())
	})
}

func TestStore_ClearPersisted(t *testing.T) {
	t.Run("no-op when nothing is stored", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))

		err := s.ClearPersisted(context.Background(), provider.LemonFox)

		assert.NoError(t, err)
		assert.False(t, s.Persisted(provider.LemonFox))
		assert.Zero(t, calls.Load(), "clearing an unset provider must not hit the backend")
	})

	t.Run("clears flag and in-memory value", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/set-service", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		})
		mux.HandleFunc("/api/clear-api-key", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "success"}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := NewStore(backend.NewClient(server.URL))
		s.Set(provider.ElevenLabs, "sk-test")
		require.NoError(t, s.Activate(context.Background(), ActivationRequest{Provider: provider.ElevenLabs, Persist: true}))
		require.True(t, s.Persisted(provider.ElevenLabs))

		err := s.ClearPersisted(context.Background(), provider.ElevenLabs)

		require.NoError(t, err)
		assert.False(t, s.Persisted(provider.ElevenLabs))
		assert.Empty(t, s.Value(provider.ElevenLabs))
	})
}

func TestStore_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elevenlabs": true, "lemonfox": false}`))
	}))
	defer server.Close()

	s := NewStore(backend.NewClient(server.URL))

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.Persisted(provider.ElevenLabs))
	assert.False(t, s.Persisted(provider.LemonFox))
}

// Package backend speaks the HTTP contract of the TTS backend service:
// provider activation, voice listing, credit inspection, speech synthesis
// and persisted-key management. The client is deliberately shape-preserving;
// provider-specific payloads come back raw for the normalizer layers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/voxflow/internal/fault"
)

// DefaultBaseURL matches the backend's default local address.
const DefaultBaseURL = "http://127.0.0.1:5000"

const (
	setServicePath = "/api/set-service"
	voicesPath     = "/api/voices"
	creditsPath    = "/api/credits"
	ttsPath        = "/api/tts"
	keyStatusPath  = "/api/get-api-keys"
	clearKeyPath   = "/api/clear-api-key"
)

// Client talks to the backend collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. Synthesis can be slow, so the shared
// timeout is generous.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetServiceRequest activates a provider on the backend. An empty APIKey
// means "use whatever credential the backend already holds".
type SetServiceRequest struct {
	Service   string `json:"service"`
	APIKey    string `json:"api_key"`
	SaveToEnv bool   `json:"save_to_env"`
}

// SetService makes the given provider the backend's active service.
func (c *Client) SetService(ctx context.Context, req SetServiceRequest) error {
	body, status, err := c.do(ctx, http.MethodPost, setServicePath, req, "set-service")
	if err != nil {
		return err
	}

	if err := applicationError(body, status, fault.KindActivationRejected, "set-service"); err != nil {
		return err
	}

	log.Debug().Str("service", req.Service).Bool("save_to_env", req.SaveToEnv).Msg("Backend service activated")
	return nil
}

type voicesResponse struct {
	Voices []json.RawMessage `json:"voices"`
}

// Voices fetches the raw voice listing for the currently active provider.
// Entries are returned undecoded; their shape depends on the provider.
func (c *Client) Voices(ctx context.Context) ([]json.RawMessage, error) {
	body, status, err := c.do(ctx, http.MethodGet, voicesPath, nil, "voices")
	if err != nil {
		return nil, err
	}

	if err := applicationError(body, status, fault.KindCatalogFetch, "voices"); err != nil {
		return nil, err
	}

	var resp voicesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nonJSONError("voices", err)
	}

	log.Debug().Int("count", len(resp.Voices)).Msg("Voice listing retrieved")
	return resp.Voices, nil
}

// Credits fetches the active provider's usage payload verbatim.
func (c *Client) Credits(ctx context.Context) (json.RawMessage, error) {
	body, status, err := c.do(ctx, http.MethodGet, creditsPath, nil, "credits")
	if err != nil {
		return nil, err
	}

	if err := applicationError(body, status, fault.KindCreditsFetch, "credits"); err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, nonJSONError("credits", fmt.Errorf("invalid JSON body"))
	}

	return json.RawMessage(body), nil
}

type speechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// Speech synthesizes text with the active provider and returns the audio
// bytes.
func (c *Client) Speech(ctx context.Context, text, voiceID string) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodPost, ttsPath, speechRequest{Text: text, VoiceID: voiceID}, "tts")
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		if err := applicationError(body, status, fault.KindGeneration, "tts"); err != nil {
			return nil, err
		}
	}

	log.Debug().Int("bytes", len(body)).Msg("Speech synthesis completed")
	return body, nil
}

// KeyStatus reports which providers have a persisted credential.
func (c *Client) KeyStatus(ctx context.Context) (map[string]bool, error) {
	body, status, err := c.do(ctx, http.MethodGet, keyStatusPath, nil, "get-api-keys")
	if err != nil {
		return nil, err
	}

	if err := applicationError(body, status, fault.KindTransport, "get-api-keys"); err != nil {
		return nil, err
	}

	var statusMap map[string]bool
	if err := json.Unmarshal(body, &statusMap); err != nil {
		return nil, nonJSONError("get-api-keys", err)
	}

	return statusMap, nil
}

type clearKeyRequest struct {
	Service string `json:"service"`
}

// ClearKey asks the backend to delete the persisted credential for service.
func (c *Client) ClearKey(ctx context.Context, service string) error {
	body, status, err := c.do(ctx, http.MethodPost, clearKeyPath, clearKeyRequest{Service: service}, "clear-api-key")
	if err != nil {
		return err
	}

	return applicationError(body, status, fault.KindActivationRejected, "clear-api-key")
}

// do performs the request and returns the full response body. Network-level
// failures come back as transport faults.
func (c *Client) do(ctx context.Context, method, path string, payload any, op string) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fault.Wrap(fault.KindTransport, op, "backend is unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fault.Wrap(fault.KindTransport, op, "failed to read backend response", err)
	}

	return body, resp.StatusCode, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// applicationError classifies a non-2xx response. A JSON body with an error
// field is an application-level rejection carrying the upstream message; a
// body that is not JSON means the backend is unreachable or misconfigured
// and is reported as a transport fault so the caller can show an actionable
// message instead of a parse error.
func applicationError(body []byte, status int, kind fault.Kind, op string) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nonJSONError(op, err)
	}

	message := resp.Error
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", status)
	}

	return fault.New(kind, op, message)
}

func nonJSONError(op string, err error) error {
	return fault.Wrap(fault.KindTransport, op,
		"the backend did not return JSON; check that it is running and reachable", err)
}

// Package credits inspects provider usage and quota. Each provider exposes
// its own field shape; the snapshot preserves the raw payload for display
// fidelity and recomputes the remaining figure instead of trusting upstream.
package credits

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/fault"
	"github.com/daikw/voxflow/internal/provider"
)

// Snapshot is a point-in-time view of a provider's usage.
type Snapshot struct {
	Provider provider.ID
	// Raw is the provider payload verbatim, for presentation layers that
	// want the original figures.
	Raw json.RawMessage

	Used      int64
	Limit     int64
	Remaining int64

	// Unmetered providers have no credit system; Message explains why.
	Unmetered bool
	Message   string
}

// Inspector fetches usage snapshots from the backend.
type Inspector struct {
	backend *backend.Client
}

// NewInspector creates an inspector backed by client.
func NewInspector(client *backend.Client) *Inspector {
	return &Inspector{backend: client}
}

type decodeFunc func(raw json.RawMessage) (Snapshot, error)

var decoders = map[provider.ID]decodeFunc{
	provider.ElevenLabs: decodeElevenLabs,
	provider.EdgeTTS:    decodeEdge,
	provider.LemonFox:   decodeLemonFox,
}

// Fetch retrieves the usage payload for id and decodes it with the
// provider's shape. The backend must already have id as its active service.
func (i *Inspector) Fetch(ctx context.Context, id provider.ID) (Snapshot, error) {
	decode, ok := decoders[id]
	if !ok {
		return Snapshot{}, fault.Newf(fault.KindUnknownProvider, "credits", "unsupported provider: %s", id)
	}

	raw, err := i.backend.Credits(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := decode(raw)
	if err != nil {
		return Snapshot{}, fault.Wrap(fault.KindCreditsFetch, "credits", "failed to decode usage payload", err)
	}

	snap.Provider = id
	snap.Raw = raw
	return snap, nil
}

type elevenLabsCredits struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

func decodeElevenLabs(raw json.RawMessage) (Snapshot, error) {
	var c elevenLabsCredits
	if err := json.Unmarshal(raw, &c); err != nil {
		return Snapshot{}, fmt.Errorf("elevenlabs credits: %w", err)
	}

	// remaining_characters is recomputed, not trusted from upstream.
	return Snapshot{
		Used:      c.CharacterCount,
		Limit:     c.CharacterLimit,
		Remaining: c.CharacterLimit - c.CharacterCount,
	}, nil
}

type edgeCredits struct {
	Message string `json:"message"`
}

func decodeEdge(raw json.RawMessage) (Snapshot, error) {
	var c edgeCredits
	if err := json.Unmarshal(raw, &c); err != nil {
		return Snapshot{}, fmt.Errorf("edge credits: %w", err)
	}

	message := c.Message
	if message == "" {
		message = "This provider is free to use with no credit system"
	}

	return Snapshot{Unmetered: true, Message: message}, nil
}

type lemonFoxCredits struct {
	CreditsUsed  int64 `json:"credits_used"`
	CreditsLimit int64 `json:"credits_limit"`
}

func decodeLemonFox(raw json.RawMessage) (Snapshot, error) {
	var c lemonFoxCredits
	if err := json.Unmarshal(raw, &c); err != nil {
		return Snapshot{}, fmt.Errorf("lemonfox credits: %w", err)
	}

	return Snapshot{
		Used:      c.CreditsUsed,
		Limit:     c.CreditsLimit,
		Remaining: c.CreditsLimit - c.CreditsUsed,
	}, nil
}

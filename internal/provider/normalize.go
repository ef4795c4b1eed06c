package provider

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/daikw/voxflow/internal/fault"
)

// PlaceholderDescription is substituted when a provider omits the optional
// description field, so a sparse payload never fails the whole catalog.
const PlaceholderDescription = "No description available"

// Voice is the normalized voice record shared by all providers.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language,omitempty"`
}

// normalizeFunc maps one raw provider entry to a Voice.
type normalizeFunc func(raw json.RawMessage) (Voice, error)

// One entry per provider; adding a provider means adding a row here,
// not touching every branch site.
var normalizers = map[ID]normalizeFunc{
	ElevenLabs: normalizeElevenLabs,
	EdgeTTS:    normalizeEdge,
	LemonFox:   normalizeLemonFox,
}

// Normalize converts a provider's raw voice listing into the common catalog
// shape, preserving payload order. Entries that cannot be decoded are
// skipped with a warning rather than failing the catalog.
func Normalize(id ID, raw []json.RawMessage) ([]Voice, error) {
	fn, ok := normalizers[id]
	if !ok {
		return nil, fault.Newf(fault.KindUnknownProvider, "normalize", "unsupported provider: %s", id)
	}

	voices := make([]Voice, 0, len(raw))
	for i, entry := range raw {
		v, err := fn(entry)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Str("provider", string(id)).Msg("Skipping undecodable voice entry")
			continue
		}
		if v.Description == "" {
			v.Description = PlaceholderDescription
		}
		voices = append(voices, v)
	}

	return voices, nil
}

type elevenLabsVoice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func normalizeElevenLabs(raw json.RawMessage) (Voice, error) {
	var v elevenLabsVoice
	if err := json.Unmarshal(raw, &v); err != nil {
		return Voice{}, fmt.Errorf("failed to decode elevenlabs voice: %w", err)
	}

	return Voice{
		ID:          v.VoiceID,
		Name:        v.Name,
		Description: v.Description,
	}, nil
}

type edgeVoice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

func normalizeEdge(raw json.RawMessage) (Voice, error) {
	var v edgeVoice
	if err := json.Unmarshal(raw, &v); err != nil {
		return Voice{}, fmt.Errorf("failed to decode edge voice: %w", err)
	}

	description := ""
	if v.Gender != "" || v.Locale != "" {
		description = fmt.Sprintf("%s, %s", v.Gender, v.Locale)
	}

	return Voice{
		ID:          v.Name,
		Name:        v.ShortName,
		Description: description,
	}, nil
}

type lemonFoxVoice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

func normalizeLemonFox(raw json.RawMessage) (Voice, error) {
	var v lemonFoxVoice
	if err := json.Unmarshal(raw, &v); err != nil {
		return Voice{}, fmt.Errorf("failed to decode lemonfox voice: %w", err)
	}

	return Voice{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Language:    v.Language,
	}, nil
}

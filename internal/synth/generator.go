// Package synth turns text into a playable audio artifact through the
// backend's synthesis endpoint and manages the artifact's lifecycle.
package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/fault"
)

// Generator issues synthesis requests and materializes the results.
type Generator struct {
	backend *backend.Client
	outDir  string
}

// NewGenerator creates a generator writing artifacts under outDir, or the
// system temp directory when outDir is empty.
func NewGenerator(client *backend.Client, outDir string) *Generator {
	if outDir == "" {
		outDir = os.TempDir()
	}
	return &Generator{backend: client, outDir: outDir}
}

// Generate synthesizes text with the given voice and returns the resulting
// artifact. Blank text or a missing voice fails validation before any
// network call is made.
func (g *Generator) Generate(ctx context.Context, text, voiceID string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fault.New(fault.KindValidation, "generate", "please enter some text")
	}
	if voiceID == "" {
		return nil, fault.New(fault.KindValidation, "generate", "please select a voice first")
	}

	audio, err := g.backend.Speech(ctx, text, voiceID)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(g.outDir, fmt.Sprintf("voice_%s.mp3", uuid.NewString()))
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return nil, fault.Wrap(fault.KindGeneration, "generate", "failed to save audio", err)
	}

	log.Debug().
		Str("voice", voiceID).
		Str("file", path).
		Int("bytes", len(audio)).
		Msg("Audio synthesis completed")

	return &Artifact{path: path}, nil
}

// Package session drives the three-stage TTS workflow: configure a
// provider, pick a voice from its catalog, generate speech. Each stage has
// its own loading flag and error slot, so a failure in one stage never
// disturbs another. The session is the single long-lived owner of workflow
// state; catalogs and credit snapshots are replaced wholesale.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/credential"
	"github.com/daikw/voxflow/internal/credits"
	"github.com/daikw/voxflow/internal/fault"
	"github.com/daikw/voxflow/internal/provider"
	"github.com/daikw/voxflow/internal/synth"
)

// Stage is one phase of the workflow.
type Stage int

const (
	StageConfiguring Stage = iota
	StageSelectingVoice
	StageGenerating
)

func (s Stage) String() string {
	switch s {
	case StageConfiguring:
		return "configuring"
	case StageSelectingVoice:
		return "selecting_voice"
	case StageGenerating:
		return "generating"
	default:
		return "unknown"
	}
}

// Loading tracks which long-running operations are in flight, one slot per
// operation.
type Loading struct {
	Activation bool
	Voices     bool
	Credits    bool
	Generation bool
}

// ActivateOptions controls how a provider activation treats the credential.
type ActivateOptions struct {
	// Persist asks the backend to store the credential durably.
	Persist bool
	// ReuseStored sends no credential, telling the backend to keep using
	// the one it already holds.
	ReuseStored bool
}

// Session is the workflow's single source of truth.
type Session struct {
	backend   *backend.Client
	store     *credential.Store
	inspector *credits.Inspector
	generator *synth.Generator

	mu       sync.Mutex
	stage    Stage
	provider provider.ID
	catalog  []provider.Voice
	selected *provider.Voice
	credits  *credits.Snapshot
	artifact *synth.Artifact
	loading  Loading
	stageErr [3]string
}

// New creates a session in the configuring stage. Artifacts are written
// under outDir (system temp dir when empty).
func New(client *backend.Client, outDir string) *Session {
	return &Session{
		backend:   client,
		store:     credential.NewStore(client),
		inspector: credits.NewInspector(client),
		generator: synth.NewGenerator(client, outDir),
		stage:     StageConfiguring,
		provider:  provider.ElevenLabs,
	}
}

// Snapshot is a read-only copy of the observable session state.
type Snapshot struct {
	Stage       Stage
	Provider    provider.ID
	Catalog     []provider.Voice
	Selected    *provider.Voice
	Credits     *credits.Snapshot
	AudioPath   string
	Loading     Loading
	StageErrors [3]string
}

// Snapshot returns the current state for the presentation layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Stage:       s.stage,
		Provider:    s.provider,
		Catalog:     append([]provider.Voice(nil), s.catalog...),
		Loading:     s.loading,
		StageErrors: s.stageErr,
	}
	if s.selected != nil {
		v := *s.selected
		snap.Selected = &v
	}
	if s.credits != nil {
		c := *s.credits
		snap.Credits = &c
	}
	if s.artifact != nil {
		snap.AudioPath = s.artifact.Path()
	}
	return snap
}

// Provider returns the currently selected provider.
func (s *Session) Provider() provider.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// SelectProvider switches the workflow to a different provider. Switching
// discards the catalog, the voice selection and any credit snapshot, and
// returns the workflow to the configuring stage; stale voice ids are
// unreachable the moment this returns.
func (s *Session) SelectProvider(id provider.ID) error {
	if !provider.Known(id) {
		return fault.Newf(fault.KindUnknownProvider, "select-provider", "unsupported provider: %s", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider == id {
		return nil
	}

	s.provider = id
	s.catalog = nil
	s.selected = nil
	s.credits = nil
	s.stage = StageConfiguring
	s.stageErr = [3]string{}

	log.Debug().Str("provider", string(id)).Msg("Provider switched, workflow reset")
	return nil
}

// SetCredential replaces the in-memory credential for the current provider.
func (s *Session) SetCredential(value string) {
	s.store.Set(s.Provider(), value)
}

// Persisted reports whether the backend holds a stored credential for id.
func (s *Session) Persisted(id provider.ID) bool {
	return s.store.Persisted(id)
}

// RefreshKeyStatus re-reads the backend's persisted-credential flags.
func (s *Session) RefreshKeyStatus(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// ClearPersisted removes the stored credential for the current provider.
func (s *Session) ClearPersisted(ctx context.Context) error {
	return s.store.ClearPersisted(ctx, s.Provider())
}

// Advance moves from configuring to voice selection. The transition is
// guarded by a successful activation; on success the catalog fetch for the
// now-active provider starts immediately, with its loading and error state
// tracked under the voice-selection stage.
func (s *Session) Advance(ctx context.Context, opts ActivateOptions) error {
	s.mu.Lock()
	if s.stage != StageConfiguring {
		s.mu.Unlock()
		return fault.Newf(fault.KindValidation, "advance", "cannot activate while %s", s.stage)
	}
	if s.loading.Activation {
		s.mu.Unlock()
		return fault.New(fault.KindValidation, "advance", "activation already in progress")
	}
	s.loading.Activation = true
	s.stageErr[StageConfiguring] = ""
	id := s.provider
	s.mu.Unlock()

	err := s.store.Activate(ctx, credential.ActivationRequest{
		Provider:    id,
		Persist:     opts.Persist,
		ReuseStored: opts.ReuseStored,
	})

	s.mu.Lock()
	s.loading.Activation = false
	if err != nil {
		s.stageErr[StageConfiguring] = fault.UserMessage(err)
		s.mu.Unlock()
		return err
	}
	s.stage = StageSelectingVoice
	s.mu.Unlock()

	// The guard has passed; a catalog fetch failure belongs to the next
	// stage and must not undo the transition.
	if err := s.LoadVoices(ctx); err != nil {
		log.Warn().Err(err).Str("provider", string(id)).Msg("Voice catalog fetch failed after activation")
	}
	return nil
}

// LoadVoices fetches and normalizes the catalog for the current provider.
// The fetch is tagged with the provider it was issued for; if the session
// switched providers while the request was in flight, the result is
// discarded on arrival. A successful fetch replaces the catalog wholesale
// and clears the voice selection.
func (s *Session) LoadVoices(ctx context.Context) error {
	s.mu.Lock()
	if s.loading.Voices {
		s.mu.Unlock()
		return fault.New(fault.KindValidation, "voices", "voice fetch already in progress")
	}
	s.loading.Voices = true
	s.stageErr[StageSelectingVoice] = ""
	issuedFor := s.provider
	s.mu.Unlock()

	raw, err := s.backend.Voices(ctx)
	var voices []provider.Voice
	if err == nil {
		voices, err = provider.Normalize(issuedFor, raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading.Voices = false

	if s.provider != issuedFor {
		log.Debug().
			Str("issued_for", string(issuedFor)).
			Str("current", string(s.provider)).
			Msg("Discarding stale voice catalog")
		return nil
	}

	if err != nil {
		s.stageErr[StageSelectingVoice] = fault.UserMessage(err)
		return err
	}

	s.catalog = voices
	s.selected = nil
	return nil
}

// SelectVoice marks a catalog voice as the synthesis voice. The id must
// belong to the current catalog.
func (s *Session) SelectVoice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageSelectingVoice {
		return fault.Newf(fault.KindValidation, "select-voice", "cannot select a voice while %s", s.stage)
	}

	for i := range s.catalog {
		if s.catalog[i].ID == id {
			v := s.catalog[i]
			s.selected = &v
			s.stageErr[StageSelectingVoice] = ""
			return nil
		}
	}

	err := fault.Newf(fault.KindValidation, "select-voice", "voice %q is not in the current catalog", id)
	s.stageErr[StageSelectingVoice] = err.Message
	return err
}

// ConfirmVoice moves from voice selection to generation. The guard requires
// a selected voice; failing it records a stage-two error and stays put.
func (s *Session) ConfirmVoice() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageSelectingVoice {
		return fault.Newf(fault.KindValidation, "confirm-voice", "cannot confirm a voice while %s", s.stage)
	}

	if s.selected == nil {
		err := fault.New(fault.KindValidation, "confirm-voice", "please select a voice to continue")
		s.stageErr[StageSelectingVoice] = err.Message
		return err
	}

	s.stage = StageGenerating
	return nil
}

// Generate synthesizes text with the selected voice. The generation stage
// is re-enterable: the session stays here across repeated utterances. A
// prior artifact's file is released before the new request is issued.
func (s *Session) Generate(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.stage != StageGenerating {
		s.mu.Unlock()
		return fault.Newf(fault.KindValidation, "generate", "cannot generate while %s", s.stage)
	}
	if s.loading.Generation {
		s.mu.Unlock()
		return fault.New(fault.KindValidation, "generate", "generation already in progress")
	}
	s.stageErr[StageGenerating] = ""

	if strings.TrimSpace(text) == "" {
		err := fault.New(fault.KindValidation, "generate", "please enter some text")
		s.stageErr[StageGenerating] = err.Message
		s.mu.Unlock()
		return err
	}
	if s.selected == nil {
		err := fault.New(fault.KindValidation, "generate", "please select a voice first")
		s.stageErr[StageGenerating] = err.Message
		s.mu.Unlock()
		return err
	}

	// The playable handle is exclusively owned; release the previous one
	// before requesting a replacement.
	if s.artifact != nil {
		if err := s.artifact.Release(); err != nil {
			log.Warn().Err(err).Msg("Failed to release previous audio artifact")
		}
		s.artifact = nil
	}

	s.loading.Generation = true
	voiceID := s.selected.ID
	s.mu.Unlock()

	artifact, err := s.generator.Generate(ctx, text, voiceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading.Generation = false

	if err != nil {
		s.stageErr[StageGenerating] = fault.UserMessage(err)
		return err
	}

	s.artifact = artifact
	return nil
}

// CheckCredits activates the current provider and fetches its usage
// snapshot. As in the configure stage it serves, failures land in the
// stage-one error slot.
func (s *Session) CheckCredits(ctx context.Context, opts ActivateOptions) error {
	s.mu.Lock()
	if s.loading.Credits {
		s.mu.Unlock()
		return fault.New(fault.KindValidation, "credits", "credit check already in progress")
	}
	s.loading.Credits = true
	s.stageErr[StageConfiguring] = ""
	issuedFor := s.provider
	s.mu.Unlock()

	err := s.store.Activate(ctx, credential.ActivationRequest{
		Provider:    issuedFor,
		Persist:     opts.Persist,
		ReuseStored: opts.ReuseStored,
	})

	var snap credits.Snapshot
	if err == nil {
		snap, err = s.inspector.Fetch(ctx, issuedFor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading.Credits = false

	if s.provider != issuedFor {
		log.Debug().Str("issued_for", string(issuedFor)).Msg("Discarding stale credits snapshot")
		return nil
	}

	if err != nil {
		s.stageErr[StageConfiguring] = fault.UserMessage(err)
		return err
	}

	s.credits = &snap
	return nil
}

// Back steps the workflow one stage backwards. In the configuring stage it
// is a no-op.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case StageGenerating:
		s.stage = StageSelectingVoice
	case StageSelectingVoice:
		s.stage = StageConfiguring
	}
}

// Close releases the session's audio artifact, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.artifact == nil {
		return nil
	}
	err := s.artifact.Release()
	s.artifact = nil
	return err
}

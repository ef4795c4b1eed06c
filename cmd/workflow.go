package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/config"
	"github.com/daikw/voxflow/internal/provider"
	"github.com/daikw/voxflow/internal/session"
)

// workflow bundles everything a command needs to drive the session.
type workflow struct {
	session *session.Session
	cfg     *config.File
}

// newWorkflow builds a session against the resolved backend URL and points
// it at the requested provider. Flags win over the config file, the config
// file wins over built-in defaults.
func newWorkflow(c *cli.Command) (*workflow, error) {
	cfg := loadConfigFile(c)

	baseURL := c.String("backend")
	if baseURL == "" {
		baseURL = os.Getenv("VOXFLOW_BACKEND_URL")
	}
	if baseURL == "" && cfg != nil {
		baseURL = cfg.Backend
	}
	if baseURL == "" {
		baseURL = backend.DefaultBaseURL
	}
	log.Debug().Str("backend", baseURL).Msg("Using backend")

	sess := session.New(backend.NewClient(baseURL), "")

	id := resolveProvider(c, cfg)
	if err := sess.SelectProvider(id); err != nil {
		return nil, err
	}
	if key := resolveAPIKey(c, cfg, id); key != "" {
		sess.SetCredential(key)
	}

	return &workflow{session: sess, cfg: cfg}, nil
}

// activate moves the session from configuring to voice selection.
func (w *workflow) activate(ctx context.Context, c *cli.Command) error {
	return w.session.Advance(ctx, session.ActivateOptions{
		Persist:     c.Bool("save-key"),
		ReuseStored: c.Bool("reuse-stored"),
	})
}

// defaultVoice returns the voice to use when none was requested: the
// config file's choice first, then the provider's built-in default.
func (w *workflow) defaultVoice(id provider.ID) string {
	if pc := w.cfg.ProviderConfig(string(id)); pc != nil && pc.Voice != "" {
		return pc.Voice
	}
	desc, err := provider.Describe(id)
	if err != nil {
		return ""
	}
	return desc.DefaultVoice
}

func resolveProvider(c *cli.Command, cfg *config.File) provider.ID {
	if p := c.String("provider"); p != "" {
		return provider.ID(strings.ToLower(strings.TrimSpace(p)))
	}
	if cfg != nil && cfg.DefaultProvider != "" {
		return provider.ID(cfg.DefaultProvider)
	}
	return provider.ElevenLabs
}

func resolveAPIKey(c *cli.Command, cfg *config.File, id provider.ID) string {
	if k := c.String("api-key"); k != "" {
		return k
	}
	if env := os.Getenv(apiKeyEnvVar(id)); env != "" {
		return env
	}
	if pc := cfg.ProviderConfig(string(id)); pc != nil {
		return pc.APIKey
	}
	return ""
}

func apiKeyEnvVar(id provider.ID) string {
	return fmt.Sprintf("VOXFLOW_%s_API_KEY", strings.ToUpper(string(id)))
}

// stageError surfaces the error slot for a stage, if set.
func stageError(snap session.Snapshot, stage session.Stage) error {
	if msg := snap.StageErrors[stage]; msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/session"
	"github.com/daikw/voxflow/internal/synth"
)

func handleSpeak(ctx context.Context, c *cli.Command) error {
	text, err := resolveText(c)
	if err != nil {
		return err
	}

	w, err := newWorkflow(c)
	if err != nil {
		return err
	}
	defer w.session.Close()

	if err := w.activate(ctx, c); err != nil {
		return err
	}
	snap := w.session.Snapshot()
	if err := stageError(snap, session.StageConfiguring); err != nil {
		return err
	}

	voiceID := c.String("voice")
	if voiceID == "" {
		voiceID = w.defaultVoice(snap.Provider)
	}
	if err := w.session.SelectVoice(voiceID); err != nil {
		return err
	}
	if err := w.session.ConfirmVoice(); err != nil {
		return err
	}

	if err := w.session.Generate(ctx, text); err != nil {
		return err
	}
	snap = w.session.Snapshot()
	if err := stageError(snap, session.StageGenerating); err != nil {
		return err
	}

	outPath := c.String("out")
	if err := copyFile(snap.AudioPath, outPath); err != nil {
		return fmt.Errorf("failed to save audio: %w", err)
	}
	log.Info().Str("voice", voiceID).Str("path", outPath).Msg("Audio saved")

	if c.Bool("play") {
		if err := synth.Play(outPath); err != nil {
			return fmt.Errorf("failed to play audio: %w", err)
		}
	}
	return nil
}

// resolveText takes the text from the flag, then positional args, then
// stdin when piped.
func resolveText(c *cli.Command) (string, error) {
	if t := c.String("text"); t != "" {
		return t, nil
	}
	if c.Args().Len() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("no text provided; pass it as an argument, via --text, or on stdin")
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

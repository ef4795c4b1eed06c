package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/config"
)

var (
	version  = "dev"
	revision = "none"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Local overrides (backend URL, API keys) may live in a .env file
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "voxflow",
		Usage: "Multi-provider text-to-speech workflow",
		Description: `voxflow walks the text-to-speech workflow against a running TTS
backend: pick a provider, supply its credential, browse the voice catalog,
check remaining credits and generate speech.`,
		Version: fmt.Sprintf("%s (rev: %s)", version, revision),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Backend base URL (also VOXFLOW_BACKEND_URL)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a config file (overrides the default search)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable verbose logging",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:    "providers",
				Usage:   "List supported providers and their credential status",
				Action:  handleProviders,
				Aliases: []string{"ls"},
			},
			{
				Name:   "voices",
				Usage:  "List the voice catalog for a provider",
				Action: handleVoices,
				Flags: append(providerFlags(),
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter voices by name (case-insensitive)",
					},
					&cli.BoolFlag{
						Name:  "grouped",
						Usage: "Group voices by language",
						Value: true,
					},
				),
			},
			{
				Name:   "credits",
				Usage:  "Show remaining credits for a provider",
				Action: handleCredits,
				Flags:  providerFlags(),
			},
			{
				Name:      "speak",
				Usage:     "Generate speech from text (flag, argument or stdin)",
				Action:    handleSpeak,
				ArgsUsage: "[text]",
				Flags: append(providerFlags(),
					&cli.StringFlag{
						Name:    "voice",
						Aliases: []string{"v"},
						Usage:   "Voice id to synthesize with (default: provider default)",
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "Text to convert to speech",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the audio to this file",
						Value:   "tts-audio.mp3",
					},
					&cli.BoolFlag{
						Name:  "play",
						Usage: "Play the audio after generation",
					},
				),
			},
			{
				Name:  "keys",
				Usage: "Manage persisted provider credentials",
				Commands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "Show which providers have a stored credential",
						Action: handleKeysStatus,
					},
					{
						Name:   "clear",
						Usage:  "Delete the stored credential for a provider",
						Action: handleKeysClear,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "provider",
								Aliases:  []string{"p"},
								Usage:    "Provider id",
								Required: true,
							},
						},
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// providerFlags are shared by every workflow command.
func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "Provider id (elevenlabs, edge_tts, lemonfox)",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "API key for the provider",
		},
		&cli.BoolFlag{
			Name:  "save-key",
			Usage: "Ask the backend to store the API key durably",
		},
		&cli.BoolFlag{
			Name:  "reuse-stored",
			Usage: "Use the credential the backend already holds",
		},
	}
}

// loadConfigFile resolves the optional config file for this invocation.
func loadConfigFile(c *cli.Command) *config.File {
	loader := config.NewLoader()

	if path := c.String("config"); path != "" {
		cfg, err := loader.LoadFromPath(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load config file")
			return nil
		}
		return cfg
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil
	}
	cfg, err := loader.Load(workDir)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config file")
		return nil
	}
	return cfg
}

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/provider"
)

func handleProviders(ctx context.Context, c *cli.Command) error {
	w, err := newWorkflow(c)
	if err != nil {
		return err
	}

	// Key status is best-effort; the provider list is useful without it.
	haveStatus := true
	if err := w.session.RefreshKeyStatus(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to fetch key status from backend")
		haveStatus = false
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("Supported providers:")
	for _, desc := range provider.All() {
		fmt.Printf("  %-12s %s", desc.ID, desc.DisplayName)
		switch {
		case !desc.RequiresCredential:
			green.Print("  (no API key needed)")
		case haveStatus && w.session.Persisted(desc.ID):
			green.Print("  (key stored)")
		case haveStatus:
			yellow.Print("  (no key stored)")
		}
		fmt.Println()
	}
	return nil
}

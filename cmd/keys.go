package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/provider"
)

func handleKeysStatus(ctx context.Context, c *cli.Command) error {
	w, err := newWorkflow(c)
	if err != nil {
		return err
	}
	if err := w.session.RefreshKeyStatus(ctx); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	bold.Println("Stored credentials:")
	for _, desc := range provider.All() {
		if !desc.RequiresCredential {
			continue
		}
		fmt.Printf("  %-12s ", desc.ID)
		if w.session.Persisted(desc.ID) {
			green.Println("stored")
		} else {
			fmt.Println("not stored")
		}
	}
	return nil
}

func handleKeysClear(ctx context.Context, c *cli.Command) error {
	id := provider.ID(strings.ToLower(strings.TrimSpace(c.String("provider"))))

	w, err := newWorkflow(c)
	if err != nil {
		return err
	}
	// Refresh first so clearing is a no-op when nothing is stored.
	if err := w.session.RefreshKeyStatus(ctx); err != nil {
		return err
	}
	if err := w.session.ClearPersisted(ctx); err != nil {
		return err
	}
	fmt.Printf("Cleared stored credential for %s\n", id)
	return nil
}

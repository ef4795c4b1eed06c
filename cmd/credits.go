package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daikw/voxflow/internal/session"
)

func handleCredits(ctx context.Context, c *cli.Command) error {
	w, err := newWorkflow(c)
	if err != nil {
		return err
	}

	if err := w.session.CheckCredits(ctx, session.ActivateOptions{
		Persist:     c.Bool("save-key"),
		ReuseStored: c.Bool("reuse-stored"),
	}); err != nil {
		return err
	}
	snap := w.session.Snapshot()
	if err := stageError(snap, session.StageConfiguring); err != nil {
		return err
	}
	if snap.Credits == nil {
		return fmt.Errorf("no credit information available")
	}
	printCredits(snap)
	return nil
}

func printCredits(snap session.Snapshot) {
	cr := snap.Credits
	bold := color.New(color.Bold)

	bold.Printf("Credits for %s:\n", cr.Provider)
	if cr.Unmetered {
		color.New(color.FgGreen).Printf("  %s\n", cr.Message)
		return
	}

	p := message.NewPrinter(language.English)
	p.Printf("  Used:      %d\n", cr.Used)
	p.Printf("  Limit:     %d\n", cr.Limit)
	remaining := color.New(color.FgGreen)
	if cr.Limit > 0 && cr.Remaining*10 < cr.Limit {
		remaining = color.New(color.FgYellow)
	}
	remaining.Fprintln(color.Output, p.Sprintf("  Remaining: %d", cr.Remaining))

	if len(cr.Raw) > 0 {
		color.New(color.Faint).Printf("  Raw:       %s\n", string(cr.Raw))
	}
}

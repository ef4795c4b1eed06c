package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/voxflow/internal/provider"
	"github.com/daikw/voxflow/internal/session"
)

func handleVoices(ctx context.Context, c *cli.Command) error {
	w, err := newWorkflow(c)
	if err != nil {
		return err
	}

	if err := w.activate(ctx, c); err != nil {
		return err
	}
	snap := w.session.Snapshot()
	if err := stageError(snap, session.StageConfiguring); err != nil {
		return err
	}
	if err := stageError(snap, session.StageSelectingVoice); err != nil {
		return err
	}

	voices := provider.Filter(snap.Catalog, c.String("search"))
	if len(voices) == 0 {
		fmt.Println("No voices found.")
		return nil
	}

	if c.Bool("grouped") {
		printGroupedVoices(snap.Provider, voices)
	} else {
		for _, v := range voices {
			printVoice(v)
		}
	}
	fmt.Printf("\n%d voice(s)\n", len(voices))
	return nil
}

func printGroupedVoices(id provider.ID, voices []provider.Voice) {
	bold := color.New(color.Bold)
	for _, g := range provider.GroupByLanguage(id, voices) {
		bold.Printf("%s:\n", g.Category)
		for _, v := range g.Voices {
			printVoice(v)
		}
	}
}

func printVoice(v provider.Voice) {
	cyan := color.New(color.FgCyan)
	fmt.Print("  ")
	cyan.Printf("%-28s", v.ID)
	fmt.Printf(" %-24s %s\n", v.Name, v.Description)
}

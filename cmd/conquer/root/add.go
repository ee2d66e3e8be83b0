package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"conquer/internal/engine"
	"conquer/internal/ui"
)

// parseSubtaskSpec parses "tier:description", e.g. "low:Wipe the counter".
func parseSubtaskSpec(raw string) (engine.SubTaskSpec, error) {
	tierStr, desc, ok := strings.Cut(raw, ":")
	if !ok {
		return engine.SubTaskSpec{}, fmt.Errorf("subtask %q must look like tier:description", raw)
	}
	tier, err := engine.ParseTier(tierStr)
	if err != nil {
		return engine.SubTaskSpec{}, err
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return engine.SubTaskSpec{}, fmt.Errorf("subtask %q has an empty description", raw)
	}
	return engine.SubTaskSpec{Description: desc, Tier: tier}, nil
}

func newAddCmd() *cobra.Command {
	var category string
	var recurrence string
	var effort string
	var location string
	var xpLow, xpMedium, xpHigh int
	var subs []string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task template with three effort tiers",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := engine.ParseRecurrence(recurrence)
			if err != nil {
				return err
			}

			var specs []engine.SubTaskSpec
			for _, raw := range subs {
				spec, err := parseSubtaskSpec(raw)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			t, err := svc.CreateTemplate(ctx, engine.TemplateInput{
				Title:        args[0],
				Category:     category,
				Recurrence:   rec,
				EffortType:   effort,
				LocationType: location,
				BaseXPLow:    xpLow,
				BaseXPMedium: xpMedium,
				BaseXPHigh:   xpHigh,
				Subtasks:     specs,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"), t.ID, t.Title,
				ui.Muted.Render(fmt.Sprintf("(%d/%d/%d XP, %d subtasks)", t.BaseXPLow, t.BaseXPMedium, t.BaseXPHigh, len(t.Subtasks))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (e.g. Cleaning, Work)")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "daily", "Recurrence (daily|weekly|bonus)")
	cmd.Flags().StringVar(&effort, "effort", "", "Effort type tag (physical|mental|creative)")
	cmd.Flags().StringVar(&location, "location", "", "Location tag (indoor|outdoor|any)")
	cmd.Flags().IntVar(&xpLow, "xp-low", 10, "Base XP for the low tier")
	cmd.Flags().IntVar(&xpMedium, "xp-medium", 20, "Base XP for the medium tier")
	cmd.Flags().IntVar(&xpHigh, "xp-high", 30, "Base XP for the high tier")
	cmd.Flags().StringArrayVarP(&subs, "sub", "s", nil, "Subtask as tier:description (repeatable)")

	return cmd
}

package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"conquer/internal/engine"
	"conquer/internal/ui"
)

func newEditCmd() *cobra.Command {
	var title string
	var category string
	var recurrence string
	var effort string
	var location string
	var xpLow, xpMedium, xpHigh int
	var subs []string

	cmd := &cobra.Command{
		Use:   "edit <template-id>",
		Short: "Edit a template (subtasks are replaced wholesale)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("template-id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("template-id must be an integer")
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

			id, _ := strconv.ParseInt(args[0], 10, 64)
			existing, err := svc.GetTemplate(ctx, id)
			if err != nil {
				return err
			}

			// Start from the stored template; flags override.
			in := engine.TemplateInput{
				Title:        existing.Title,
				Category:     existing.Category,
				Recurrence:   engine.Recurrence(existing.Recurrence),
				EffortType:   existing.EffortType,
				LocationType: existing.LocationType,
				BaseXPLow:    existing.BaseXPLow,
				BaseXPMedium: existing.BaseXPMedium,
				BaseXPHigh:   existing.BaseXPHigh,
			}
			for _, st := range existing.Subtasks {
				in.Subtasks = append(in.Subtasks, engine.SubTaskSpec{Description: st.Description, Tier: engine.Tier(st.Tier)})
			}

			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("category") {
				in.Category = category
			}
			if cmd.Flags().Changed("recurrence") {
				rec, err := engine.ParseRecurrence(recurrence)
				if err != nil {
					return err
				}
				in.Recurrence = rec
			}
			if cmd.Flags().Changed("effort") {
				in.EffortType = effort
			}
			if cmd.Flags().Changed("location") {
				in.LocationType = location
			}
			if cmd.Flags().Changed("xp-low") {
				in.BaseXPLow = xpLow
			}
			if cmd.Flags().Changed("xp-medium") {
				in.BaseXPMedium = xpMedium
			}
			if cmd.Flags().Changed("xp-high") {
				in.BaseXPHigh = xpHigh
			}
			if cmd.Flags().Changed("sub") {
				in.Subtasks = nil
				for _, raw := range subs {
					spec, err := parseSubtaskSpec(raw)
					if err != nil {
						return err
					}
					in.Subtasks = append(in.Subtasks, spec)
				}
			}

			t, err := svc.EditTemplate(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n",
				ui.Good.Render(ui.IconDone+" Updated"), t.ID, t.Title,
				ui.Muted.Render(fmt.Sprintf("(%d subtasks)", len(t.Subtasks))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "", "New recurrence (daily|weekly|bonus)")
	cmd.Flags().StringVar(&effort, "effort", "", "New effort type tag")
	cmd.Flags().StringVar(&location, "location", "", "New location tag")
	cmd.Flags().IntVar(&xpLow, "xp-low", 0, "New base XP for the low tier")
	cmd.Flags().IntVar(&xpMedium, "xp-medium", 0, "New base XP for the medium tier")
	cmd.Flags().IntVar(&xpHigh, "xp-high", 0, "New base XP for the high tier")
	cmd.Flags().StringArrayVarP(&subs, "sub", "s", nil, "Replacement subtask as tier:description (repeatable)")

	return cmd
}

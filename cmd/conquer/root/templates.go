package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"conquer/internal/engine"
	"conquer/internal/ui"
)

func newTemplatesCmd() *cobra.Command {
	var category string
	var effort string
	var location string
	var recurrence string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List active task templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := svc.ListTemplates(ctx, engine.TemplateFilter{
				Category:     category,
				EffortType:   effort,
				LocationType: location,
				Recurrence:   recurrence,
			})
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No templates. Try: conquer add \"Clean the Kitchen\" -c Cleaning"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Templates"))
			for _, t := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s %s %s\n",
					t.ID, t.Title,
					ui.Muted.Render(fmt.Sprintf("[%s, %s]", t.Category, t.Recurrence)),
					ui.Muted.Render(fmt.Sprintf("%d/%d/%d XP", t.BaseXPLow, t.BaseXPMedium, t.BaseXPHigh)))
				for _, st := range t.Subtasks {
					fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n",
						ui.TierIcon(engine.Tier(st.Tier).String()), ui.Muted.Render(st.Description))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVar(&effort, "effort", "", "Filter by effort type")
	cmd.Flags().StringVar(&location, "location", "", "Filter by location type")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "", "Filter by recurrence")

	return cmd
}

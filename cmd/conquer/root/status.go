package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"conquer/internal/engine"
	"conquer/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, streak, and weekly stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.GetProgress(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "Progress"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", p.CurrentLevel))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Key.Render("XP:"),
				ui.ProgressBar(engine.LevelProgressPercent(p.TotalXP), 20),
				ui.Muted.Render(fmt.Sprintf("%d total, %d to next level", p.TotalXP, engine.XPToNextLevel(p.TotalXP))))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Tasks completed", p.TasksCompleted))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Streak", fmt.Sprintf("%s %d (best %d)", ui.IconStreak, p.CurrentStreak, p.LongestStreak)))
			fmt.Fprintln(cmd.OutOrStdout(), "")

			week, err := svc.WeekStats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("📊 This week"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Completions", week.Completions))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Points", week.Points))
			fmt.Fprintln(cmd.OutOrStdout(), "")

			cats, err := svc.CategoryStats(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cats))
			for name := range cats {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("🗂️ Categories"))
			for _, name := range names {
				count := cats[name]
				label := ui.Muted.Render(name)
				if count > 0 {
					label = ui.Key.Render(name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s: %d\n", label, count)
			}

			today, err := svc.TodaysCompletions(ctx)
			if err != nil {
				return err
			}
			if len(today) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "")
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconDone+" Completed today"))
				for _, d := range today {
					tier := engine.Tier(d.Instance.SelectedTier)
					fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n",
						ui.TierIcon(tier.String()), d.Template.Title,
						ui.Muted.Render(fmt.Sprintf("+%d XP", d.Instance.XPEarned)))
				}
			}

			return nil
		},
	}

	return cmd
}

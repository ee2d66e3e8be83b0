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

func newUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up <instance-id>",
		Short: "Upgrade an instance to the next tier",
		Long: `Upgrade an instance to the next effort tier.

Only allowed when every subtask available at the current tier is checked.
The newly unlocked subtasks arrive unchecked; existing checks are kept.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("instance-id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("instance-id must be an integer")
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
			inst, err := svc.UpgradeTier(ctx, id)
			if err != nil {
				return err
			}

			tier := engine.Tier(inst.SelectedTier)
			st := engine.StatusOf(inst)
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d is now %s %s\n",
				ui.Gold.Render(ui.IconUp+" Upgraded"), inst.ID,
				ui.TierIcon(tier.String())+" "+tier.String(),
				ui.Muted.Render(fmt.Sprintf("(%d/%d steps done)", st.Completed, st.Total)))
			return nil
		},
	}

	return cmd
}

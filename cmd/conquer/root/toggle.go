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

func newToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <instance-id> <completion-id>",
		Short: "Check or uncheck one checklist step",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("instance-id and completion-id are required")
			}
			for _, a := range args {
				if _, err := strconv.ParseInt(a, 10, 64); err != nil {
					return fmt.Errorf("%q must be an integer", a)
				}
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

			instanceID, _ := strconv.ParseInt(args[0], 10, 64)
			completionID, _ := strconv.ParseInt(args[1], 10, 64)

			inst, err := svc.ToggleSubtask(ctx, instanceID, completionID)
			if err != nil {
				return err
			}

			st := engine.StatusOf(inst)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d done %s\n",
				ui.Good.Render(ui.IconDone+" Checklist"), st.Completed, st.Total,
				ui.ProgressBar(st.Percentage, 10))
			if engine.CanUpgradeTier(inst) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconUp+" Tier upgrade available: conquer up "+args[0]))
			}
			return nil
		},
	}

	return cmd
}

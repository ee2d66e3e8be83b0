package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"conquer/internal/config"
	"conquer/internal/engine"
	"conquer/internal/ui"
)

func newStartCmd() *cobra.Command {
	var tierStr string

	cmd := &cobra.Command{
		Use:   "start <template-id>",
		Short: "Start today's attempt at a template",
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

			if tierStr == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				tierStr = cfg.DefaultTier
			}
			tier, err := engine.ParseTier(tierStr)
			if err != nil {
				return err
			}

			id, _ := strconv.ParseInt(args[0], 10, 64)
			inst, err := svc.CreateInstance(ctx, id, tier)
			if err != nil {
				return err
			}

			t, err := svc.GetTemplate(ctx, id)
			if err != nil {
				return err
			}
			descByID := map[int64]string{}
			for _, st := range t.Subtasks {
				descByID[st.ID] = st.Description
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s instance #%d at %s %s\n",
				ui.Good.Render(ui.IconQuest+" Started"), inst.ID,
				ui.TierIcon(tier.String())+" "+tier.String(),
				ui.Muted.Render(fmt.Sprintf("(%d checklist steps)", len(inst.Completions))))
			for _, c := range inst.Completions {
				fmt.Fprintf(cmd.OutOrStdout(), "   [ ] #%d %s\n", c.ID, ui.Muted.Render(descByID[c.SubtaskID]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tierStr, "tier", "t", "", "Effort tier (low|medium|high)")

	return cmd
}

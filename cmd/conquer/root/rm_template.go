package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"conquer/internal/ui"
)

func newRmTemplateCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "rm-template <template-id>",
		Short: "Deactivate a template (or --hard delete it with all history)",
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
			if hard {
				if err := svc.DeleteTemplate(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s template #%d and all its instances\n", ui.Bad.Render("Deleted"), id)
				return nil
			}

			if err := svc.DeactivateTemplate(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s template #%d %s\n", ui.Warn.Render("Deactivated"), id, ui.Muted.Render("(history kept)"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Hard delete: template, subtasks, instances, completions")

	return cmd
}

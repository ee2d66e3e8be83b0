package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"conquer/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "conquer",
	Short:         "Conquer — gamified personal task tracker",
	Long:          "Conquer turns chores into tiered quests: pick an effort tier, work the checklist, earn XP, keep the streak alive.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newTemplatesCmd(),
		newEditCmd(),
		newRmTemplateCmd(),
		newStartCmd(),
		newToggleCmd(),
		newUpCmd(),
		newDoCmd(),
		newRmCmd(),
		newStatusCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

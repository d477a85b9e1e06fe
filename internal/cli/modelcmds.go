package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"nse-insight/internal/models"
)

// addModelCommands adds artifact management commands.
func addModelCommands(rootCmd *cobra.Command, app *App) {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Manage trained model artifacts",
	}
	modelsCmd.AddCommand(newModelsListCmd(app))
	modelsCmd.AddCommand(newModelsDeleteCmd(app))
	rootCmd.AddCommand(modelsCmd)
}

func newModelsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List stored models",
		Example: `  insight models list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			infos, err := app.Store.List(cmd.Context())
			if err != nil {
				output.Error("Failed to list models: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(infos)
			}

			if len(infos) == 0 {
				output.Println("No trained models.")
				return nil
			}
			output.Printf("%-12s %-8s %s\n", "SYMBOL", "KIND", "TRAINED")
			for _, info := range infos {
				output.Printf("%-12s %-8s %s\n", info.Symbol, info.Kind,
					info.TrainedAt.Format("02-Jan-2006 15:04"))
			}
			return nil
		},
	}
}

func newModelsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <symbol> <kind>",
		Short: "Delete a stored model (kind: tree or neural)",
		Example: `  insight models delete RELIANCE tree
  insight models delete INFY neural`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			kind := models.ModelKind(strings.ToLower(args[1]))

			if kind != models.ModelKindTree && kind != models.ModelKindNeural {
				output.Error("Unknown model kind %q (want tree or neural)", args[1])
				return cmd.Help()
			}

			if err := app.Store.Delete(cmd.Context(), symbol, kind); err != nil {
				output.Error("Failed to delete model: %v", err)
				return err
			}
			output.Success("Deleted %s %s model", symbol, kind)
			return nil
		},
	}
}

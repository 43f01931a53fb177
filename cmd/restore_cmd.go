package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kebairia/mongosnap/internal/operations"
)

var restoreReq operations.RestoreRequest

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore one dataset of a backup into the target database",
	Long: `Restore one dataset of a backup folder into the database at the target
connection string (NEW_DB_URI). Collections of that database are dropped and
replaced. The dataset defaults to the database named in NEW_DB_URI.`,
	Example: `  mongosnap restore
  mongosnap restore --backup before-migration-2024-05-01_12-00-00 --dataset shop --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		op, err := newOperator(cmd)
		if err != nil {
			return err
		}

		report, err := op.Restore(cmd.Context(), restoreReq)
		if err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
			"✅ Restore completed successfully: %s/%s\n", report.Selection.Backup, report.Selection.Dataset)
		return nil
	},
}

func init() {
	flags := restoreCmd.Flags()
	flags.StringVarP(&restoreReq.Backup, "backup", "b", "", "backup folder to restore; skips the selection")
	flags.StringVarP(&restoreReq.Dataset, "dataset", "d", "", "dataset inside the backup folder; skips the prompt")
	flags.BoolVarP(&restoreReq.AssumeYes, "yes", "y", false, "do not ask before dropping collections")
}

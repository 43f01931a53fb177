package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupLabel string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the source database into a new labeled backup folder",
	Long: `Dump the database at the source connection string (OLD_DB_URI) into
<backup path>/<label>-<timestamp>. Without --label the label is asked for;
an existing folder with the same name is never overwritten.`,
	Example: `  mongosnap backup
  mongosnap backup --label before-migration`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		op, err := newOperator(cmd)
		if err != nil {
			return err
		}

		report, err := op.Backup(cmd.Context(), backupLabel)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✅ Backup completed successfully: %s\n", report.Path)
		if report.Manifest != nil {
			fmt.Fprintf(out, "   run %s, %d dataset(s), took %s\n",
				report.Manifest.RunID, len(report.Manifest.Datasets), report.Manifest.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupLabel, "label", "l", "", "label for the backup folder; skips the prompt")
}

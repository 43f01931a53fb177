package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kebairia/mongosnap/internal/operations"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup folders, newest first",
	Example: `  mongosnap list
  mongosnap list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		op, err := newOperator(cmd)
		if err != nil {
			return err
		}
		items, err := op.List()
		if err != nil {
			return err
		}

		if listJSON {
			return writeListJSON(cmd.OutOrStdout(), items)
		}
		return writeListTable(cmd.OutOrStdout(), items, time.Now())
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
}

// listOutput is one backup in JSON output.
type listOutput struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	ModTime   time.Time `json:"modified_at"`
	SizeBytes int64     `json:"size_bytes"`
	Datasets  []string  `json:"datasets"`
	RunID     string    `json:"run_id,omitempty"`
	Source    string    `json:"source,omitempty"`
}

func writeListJSON(w io.Writer, items []operations.ListItem) error {
	out := make([]listOutput, 0, len(items))
	for _, it := range items {
		o := listOutput{
			Name:      it.Name,
			Path:      it.Path,
			ModTime:   it.ModTime,
			SizeBytes: it.Size,
			Datasets:  it.Datasets,
		}
		if it.Manifest != nil {
			o.RunID = it.Manifest.RunID
			o.Source = it.Manifest.Source
		}
		out = append(out, o)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeListTable(w io.Writer, items []operations.ListItem, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tAGE\tSIZE\tDATASETS")
	for _, it := range items {
		datasets := strings.Join(it.Datasets, ",")
		if datasets == "" {
			datasets = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			it.Name,
			humanize.RelTime(it.ModTime, now, "ago", "from now"),
			humanize.Bytes(uint64(it.Size)),
			datasets,
		)
	}
	return tw.Flush()
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/loog-project/docdiff/pkg/diffpreview"
)

var logCmd = &cobra.Command{
	Use:               "log ID",
	Short:             "List the revisions of object ID",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: objectIDCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := openTracker()
		if err != nil {
			return err
		}
		defer tracker.Close()

		history, err := tracker.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "REVISION\tKIND\tCOMMITTED\tCHANGES")
		for _, rev := range history {
			kind, changes := "patch", diffpreview.RenderStats(rev.Stats)
			if rev.Snapshot {
				kind, changes = "snapshot", "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rev.ID, kind, humanize.Time(rev.Time), changes)
		}
		return w.Flush()
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the objects in the revision store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tracker, err := openTracker()
		if err != nil {
			return err
		}
		defer tracker.Close()

		objects, err := tracker.Objects(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range objects {
			latest, err := tracker.LatestRevision(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, latest)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd, lsCmd)
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/docdiff/internal/store"
	"github.com/loog-project/docdiff/pkg/diffmap"
)

var (
	// show command flags
	showRev    string
	showSince  string
	showOutput string
	showFormat string
)

var showCmd = &cobra.Command{
	Use:   "show [FLAGS] ID",
	Short: "Print a stored revision, or the changes between two revisions",
	Long: `Restores object ID at --rev (default: latest) and prints it. With --since,
prints the update from the --since revision to --rev instead, in the same
formats as the diff command.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: objectIDCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := openTracker()
		if err != nil {
			return err
		}
		defer tracker.Close()

		ctx, objID := cmd.Context(), args[0]
		rev, err := tracker.LatestRevision(ctx, objID)
		if err != nil {
			return fmt.Errorf("object %q: %w", objID, err)
		}
		if showRev != "" {
			if rev, err = parseRevision(showRev); err != nil {
				return err
			}
		}

		if showSince != "" {
			since, err := parseRevision(showSince)
			if err != nil {
				return err
			}
			from, err := tracker.Restore(ctx, objID, since)
			if err != nil {
				return err
			}
			to, err := tracker.Restore(ctx, objID, rev)
			if err != nil {
				return err
			}
			update, err := tracker.Changes(ctx, objID, since, rev)
			if err != nil {
				return err
			}
			return writeUpdate(cmd.OutOrStdout(), showFormat, from.Object, to.Object, update)
		}

		snap, err := tracker.Restore(ctx, objID, rev)
		if err != nil {
			return err
		}
		return writeDocument(cmd, snap.Object)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showRev, "rev", "r", "",
		"Revision to show (hex, as printed by log)")
	showCmd.Flags().StringVar(&showSince, "since", "",
		"Print the changes since this revision instead of the document")
	showCmd.Flags().StringVar(&showOutput, "output", "yaml",
		"Document output format, json or yaml")
	showCmd.Flags().StringVar(&showFormat, "format", formatPretty,
		fmt.Sprintf("Update output format with --since, one of %v", outputFormats))
}

// parseRevision parses a revision ID as printed by [store.RevisionID.String].
func parseRevision(s string) (store.RevisionID, error) {
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", store.ErrInvalidRevision, s)
	}
	return store.RevisionID(n), nil
}

func writeDocument(cmd *cobra.Command, doc diffmap.Document) error {
	switch showOutput {
	case "json":
		return writeJSON(cmd.OutOrStdout(), doc)
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output %q, want json or yaml", showOutput)
}

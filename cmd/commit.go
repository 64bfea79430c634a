package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loog-project/docdiff/internal/service"
	"github.com/loog-project/docdiff/internal/util"
)

var commitCmd = &cobra.Command{
	Use:               "commit [FLAGS] ID DOC",
	Short:             "Record DOC as the next revision of object ID",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: objectIDCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := util.LoadDocument(args[1])
		if err != nil {
			return err
		}

		tracker, err := openTracker()
		if err != nil {
			return err
		}
		defer tracker.Close()

		rev, err := tracker.Commit(cmd.Context(), args[0], doc)
		if errors.Is(err, service.ErrNoChanges) {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: no changes since revision %s\n", args[0], rev)
			return err
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: committed revision %s\n", args[0], rev)
		return err
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

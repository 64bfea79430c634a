package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/docdiff/internal/ui"
	"github.com/loog-project/docdiff/pkg/diffpreview"
)

var browseCmd = &cobra.Command{
	Use:               "browse ID",
	Short:             "Interactively browse the revisions of object ID",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: objectIDCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := openTracker()
		if err != nil {
			return err
		}
		defer tracker.Close()

		browser := ui.NewBrowser(cmd.Context(), tracker, args[0])
		if viper.GetBool("no-color") {
			browser.Theme = ui.PlainTheme
			browser.PreviewTheme = diffpreview.PlainTheme
		}

		_, err = tea.NewProgram(browser,
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/loog-project/diffy/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browses the recorded revisions in a Terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging(true)

		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		root := ui.NewRoot(ui.DarkTheme, ui.NewUILogger(), ui.NewListView(svc))
		_, err = tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/diffy/internal/store"
	"github.com/loog-project/diffy/pkg/diffy"
)

var showFull bool

var showCmd = &cobra.Command{
	Use:               "show DOCUMENT [REVISION]",
	Short:             "Shows the patch of a revision, the latest one by default",
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: documentCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(false)
		documentID := args[0]

		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		var revID store.RevisionID
		if len(args) == 2 {
			revID, err = store.ParseRevisionID(args[1])
		} else {
			revID, err = svc.LatestRevision(cmd.Context(), documentID)
		}
		if err != nil {
			return err
		}

		if showFull {
			rev, err := svc.Restore(cmd.Context(), documentID, revID)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(diffy.ToAny(rev.Value)); err != nil {
				return err
			}
			return enc.Close()
		}

		change, err := svc.Changes(cmd.Context(), documentID, revID)
		if err != nil {
			return err
		}
		return printPatch(cmd.OutOrStdout(), change.Origin(), change.Patch)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showFull, "full", false,
		"Print the document as YAML instead of the patch")
	showCmd.Flags().BoolVar(&dumpPatch, "dump", false,
		"Dump the raw patch structure instead of rendering it")
	showCmd.Flags().BoolVarP(&hideUnchanged, "hide-unchanged", "u", false,
		"Only show keys touched by the patch")

	rootCmd.AddCommand(showCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loog-project/diffy/internal/service"
	"github.com/loog-project/diffy/internal/source"
)

var commitCmd = &cobra.Command{
	Use:   "commit DOCUMENT FILE",
	Short: "Records the content of FILE as the next revision of DOCUMENT",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(false)
		documentID, path := args[0], args[1]

		value, err := source.Load(path)
		if err != nil {
			return err
		}

		svc, err := openService(true)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		rev, _, err := svc.Commit(cmd.Context(), documentID, path, value)
		var unchanged service.UnchangedError
		switch {
		case errors.As(err, &unchanged):
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is unchanged since revision %s\n", documentID, unchanged.Revision)
			return err
		case errors.Is(err, service.ErrFiltered):
			log.Warn().Str("document", documentID).Msg("Document rejected by filter, nothing committed")
			return nil
		case err != nil:
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "committed %s revision %s (%d changes)\n",
			documentID, rev.ID, rev.Changes)
		if err != nil || !verbose {
			return err
		}
		change, err := svc.Changes(cmd.Context(), documentID, rev.ID)
		if err != nil {
			return err
		}
		return printPatch(cmd.OutOrStdout(), change.Origin(), change.Patch)
	},
}

var verbose bool

func init() {
	addStoreFlags(commitCmd)
	commitCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print the patch of the new revision")

	rootCmd.AddCommand(commitCmd)
}

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/loog-project/diffy/internal/store"
)

var logCmd = &cobra.Command{
	Use:               "log [DOCUMENT]",
	Short:             "Lists the revisions of a document, or of all documents",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: documentCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(false)

		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "DOCUMENT\tREVISION\tAGE\tCHANGES\tSOURCE")

		if len(args) == 1 {
			revisions, err := svc.History(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("history of %s: %w", args[0], err)
			}
			for _, change := range revisions {
				printRevision(tw, args[0], change.Revision)
			}
			return tw.Flush()
		}

		err = svc.Walk(func(documentID string, rev *store.Revision) bool {
			printRevision(tw, documentID, rev)
			return true
		})
		if err != nil {
			return err
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func printRevision(w io.Writer, documentID string, rev *store.Revision) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		documentID,
		rev.ID,
		humanize.Time(rev.Time),
		humanize.Comma(int64(rev.Changes)),
		rev.Source)
}

package cmd

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/loog-project/diffy/internal/source"
	"github.com/loog-project/diffy/pkg/diffpreview"
	"github.com/loog-project/diffy/pkg/diffy"
)

var (
	dumpPatch     bool
	hideUnchanged bool
	noColor       bool
)

var diffCmd = &cobra.Command{
	Use:   "diff FROM TO",
	Short: "Shows the structural patch between two documents",
	Long: `Loads two JSON or YAML documents and prints the patch turning FROM into TO,
rendered on top of FROM. Use --dump to print the raw patch instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(false)

		from, err := source.Load(args[0])
		if err != nil {
			return err
		}
		to, err := source.Load(args[1])
		if err != nil {
			return err
		}
		return printPatch(cmd.OutOrStdout(), from, diffy.Diff(from, to))
	},
}

func init() {
	diffCmd.Flags().BoolVar(&dumpPatch, "dump", false,
		"Dump the raw patch structure instead of rendering it")
	diffCmd.Flags().BoolVarP(&hideUnchanged, "hide-unchanged", "u", false,
		"Only show keys touched by the patch")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(diffCmd)
}

// printPatch renders what [patch] does to [origin] followed by a summary line.
func printPatch(w io.Writer, origin diffy.Value, patch diffy.Patch) error {
	if dumpPatch {
		spew.Fdump(w, patch)
		return nil
	}

	theme := diffpreview.DarkTheme
	opts := diffpreview.DefaultRenderOptions
	if noColor {
		theme = diffpreview.PlainTheme
		opts.EnableBackgroundHighlight = false
	}
	opts.HideUnchanged = hideUnchanged

	if _, err := io.WriteString(w, diffpreview.RenderPatch(origin, patch, theme, opts)); err != nil {
		return err
	}
	summary := diffy.Summarize(patch)
	_, err := fmt.Fprintf(w, "\n%d set, %d removed, %d created\n",
		summary.Set, summary.Removed, summary.Created)
	return err
}

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loog-project/diffy/internal/service"
	"github.com/loog-project/diffy/internal/source"
	"github.com/loog-project/diffy/internal/ui"
)

var (
	watchWithTUI bool
	debounce     time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Records a revision whenever one of the files changes",
	Long: `Watches JSON or YAML files and commits their content as a new revision every
time they are written. The document ID of a file is its name without the
extension. Use --tui to browse the revisions while they are recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(watchWithTUI)

		svc, err := openService(true)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		if !watchWithTUI {
			setupLog.Info().Strs("files", args).Msg("Watching files, press Ctrl+C to exit")
			return source.Watch(ctx, args, debounce, func(ev source.Event) {
				commitEvent(ctx, svc, ev, nil)
			})
		}

		// interactive mode: we will use the UI to display revisions while they are committed
		logger := ui.NewUILogger()
		root := ui.NewRoot(ui.DarkTheme, logger, ui.NewListView(svc))
		program := tea.NewProgram(root, tea.WithAltScreen())
		logger.Attach(program)

		watchErr := make(chan error, 1)
		go func() {
			// wait until the program is ready to receive commands, so we don't skip any commits
			program.Send(nil)
			err := source.Watch(ctx, args, debounce, func(ev source.Event) {
				commitEvent(ctx, svc, ev, func(documentID string, change *service.Change) {
					logger.Infof(documentID, "committed revision %s (%d changes)", change.Revision.ID, change.Revision.Changes)
					program.Send(ui.NewCommitMessage(documentID, change))
				})
				if ev.Err != nil {
					logger.Errorf(documentIDOf(ev.Path), "cannot load %s: %v", ev.Path, ev.Err)
				}
			})
			if err != nil {
				program.Quit()
			}
			watchErr <- err
		}()

		if _, err := program.Run(); err != nil {
			setupLog.Error().Err(err).Msg("Error running TUI program")
		}
		cancel()
		return <-watchErr
	},
}

func init() {
	addStoreFlags(watchCmd)
	watchCmd.Flags().BoolVar(&watchWithTUI, "tui", false,
		"Browse the recorded revisions in a Terminal UI")
	watchCmd.Flags().DurationVar(&debounce, "debounce", source.DefaultDebounce,
		"Quiet period after a write before a file is reloaded")

	rootCmd.AddCommand(watchCmd)
}

// documentIDOf derives the document ID from a file path.
func documentIDOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// commitEvent commits a loaded document and calls [onCommit] for new revisions.
func commitEvent(
	ctx context.Context,
	svc *service.TrackerService,
	ev source.Event,
	onCommit func(documentID string, change *service.Change),
) {
	documentID := documentIDOf(ev.Path)
	l := log.With().
		Str("document", documentID).
		Str("path", ev.Path).
		Logger()

	if ev.Err != nil {
		l.Warn().Err(ev.Err).Msg("Cannot load document")
		return
	}

	rev, patch, err := svc.Commit(ctx, documentID, ev.Path, ev.Value)
	var unchanged service.UnchangedError
	switch {
	case errors.As(err, &unchanged):
		l.Debug().Str("revision", unchanged.Revision.String()).Msg("Document unchanged, skipping commit")
		return
	case errors.Is(err, service.ErrFiltered):
		l.Debug().Msg("Document rejected by filter")
		return
	case err != nil:
		l.Error().Err(err).Msg("Error committing document")
		return
	}

	l.Info().
		Str("revision", rev.ID.String()).
		Int("changes", rev.Changes).
		Msg("Committed revision")

	if onCommit != nil {
		change := &service.Change{Revision: rev, Patch: patch}
		if rev.HasPrevious {
			change.Previous, err = svc.Restore(ctx, documentID, rev.PreviousID)
			if err != nil {
				l.Error().Err(err).Msg("Error loading previous revision")
				return
			}
		}
		onCommit(documentID, change)
	}
}

package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/diffy/internal/service"
	"github.com/loog-project/diffy/internal/store"
	"github.com/loog-project/diffy/pkg/diffy"
)

// AlertView shows an error of the store or the patch engine on top of the
// current view.
type AlertView struct {
	Base

	Title string
	// Document the failed operation was about, empty if none.
	Document string
	Err      error
	// Retry runs the failed operation again, nil if it cannot be retried.
	Retry tea.Cmd
}

var _ View = (*AlertView)(nil)

func (av *AlertView) View() string {
	lines := []string{
		av.Theme.MutedTextStyle.Render("AN ERROR OCCURRED:"),
		"",
		av.Theme.ErrorTextStyle.Render(av.Err.Error()),
	}
	if details := alertDetails(av.Document, av.Err); len(details) > 0 {
		lines = append(lines, "")
		for _, d := range details {
			lines = append(lines, av.Theme.MutedTextStyle.Render(d))
		}
	}
	lines = append(lines, "", "("+av.Title+")")

	return lipgloss.Place(av.Width, av.Height, lipgloss.Center, lipgloss.Center,
		av.Theme.AlertDialogContainerStyle.Render(strings.Join(lines, "\n")))
}

// alertDetails explains where an error happened.
func alertDetails(documentID string, err error) []string {
	var details []string
	if documentID != "" {
		details = append(details, "document: "+documentID)
	}

	var applyErr *diffy.ApplyError
	if errors.As(err, &applyErr) {
		path := strings.Join(applyErr.Path, ".")
		if path == "" {
			path = "(root)"
		}
		details = append(details, "patch path: "+path)
		if errors.Is(err, diffy.ErrMissingOrigin) {
			details = append(details, "the patch was computed against another revision")
		}
	}

	var unchanged service.UnchangedError
	switch {
	case errors.As(err, &unchanged):
		details = append(details, "latest revision: "+unchanged.Revision.String())
	case errors.Is(err, store.ErrInvalidRevision):
		details = append(details, "the revision chain of the document is broken")
	case errors.Is(err, store.ErrNotFound):
		details = append(details, "no such revision in the store")
	}
	return details
}

func (av *AlertView) KeyMap() string {
	return new(HelpBar).
		Hint("esc", "close").
		HintIf(av.Retry != nil, "r", "retry").
		Render(av.Theme)
}

func (av *AlertView) Breadcrumb() string {
	if av.Document != "" {
		return "Error (" + av.Title + ", " + av.Document + ")"
	}
	return "Error (" + av.Title + ")"
}

func (av *AlertView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "ctrl+q", "ctrl+z", "esc":
			return av, PushChangeView(Pop, nil)
		case "r":
			if av.Retry != nil {
				return av, tea.Sequence(PushChangeView(Pop, nil), av.Retry)
			}
		}
	}
	return av, nil
}

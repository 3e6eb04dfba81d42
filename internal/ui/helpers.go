package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loog-project/diffy/internal/service"
)

type Base struct {
	Width  int
	Height int
	Theme  Theme
}

func (b *Base) SetSize(width, height int) {
	b.Width = width
	b.Height = height
}

func (b *Base) SetTheme(theme Theme) {
	b.Theme = theme
}

type pushType uint

const (
	Push pushType = iota
	Pop
	Replace
)

type pushViewMsg struct {
	view     View
	pushType pushType
}

type tickMsg struct{}

type alertMsg struct {
	Title    string
	Document string
	Err      error
	Retry    tea.Cmd
}

// commitMsg announces a revision committed while the UI is running.
type commitMsg struct {
	DocumentID string
	Change     *service.Change
}

func PushChangeView(pushType pushType, view View) tea.Cmd {
	return func() tea.Msg {
		return pushViewMsg{
			view:     view,
			pushType: pushType,
		}
	}
}

// NewAlert creates a message opening an [AlertView] for [err]. [retry] runs
// the failed operation again and may be nil.
func NewAlert(title string, err error, retry tea.Cmd) tea.Msg {
	return alertMsg{
		Title: title,
		Err:   err,
		Retry: retry,
	}
}

// NewDocumentAlert is like [NewAlert] for an error concerning one document.
func NewDocumentAlert(documentID, title string, err error, retry tea.Cmd) tea.Msg {
	return alertMsg{
		Title:    title,
		Document: documentID,
		Err:      err,
		Retry:    retry,
	}
}

// NewCommitMessage creates a message announcing a new revision to the list.
func NewCommitMessage(documentID string, change *service.Change) tea.Msg {
	return commitMsg{
		DocumentID: documentID,
		Change:     change,
	}
}

func ScrollViewport(k tea.KeyMsg, vp *viewport.Model) tea.Cmd {
	switch k.String() {
	case "up", "k":
		vp.ScrollUp(1)
	case "down", "j":
		vp.ScrollDown(1)
	case "pgup":
		vp.PageUp()
	case "pgdown":
		vp.PageDown()
	case "left":
		vp.ScrollLeft(1)
	case "right":
		vp.ScrollRight(1)
	}
	return nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	ks := make([]K, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// ternary is a generic function that returns one of two values based on a boolean condition.
// it should be used for rendering purposes only.
func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"

	"github.com/loog-project/diffy/internal/service"
	"github.com/loog-project/diffy/internal/util"
	"github.com/loog-project/diffy/pkg/diffpreview"
	"github.com/loog-project/diffy/pkg/diffy"
)

const (
	arrowDown  = "▾"
	arrowRight = "▸"

	pageScrollSkip = 5
	sizeSkip       = 2

	whereRevisionBanner = `
         .-"-.
       _/_-.-_\_   WHERE
      / __} {__ \     REVISION
     / //  "  \\ \      ???
    / / \'---'/ \ \`
)

type renderMode uint

const (
	modeShowObjectPretty = iota
	modeShowObjectJSON
	modeShowPatchPretty
	modeShowPatchDump

	_modeMax // only a helper to get the number of modes
)

func (r renderMode) String() string {
	switch r {
	case modeShowObjectPretty:
		return "object (pretty)"
	case modeShowObjectJSON:
		return "object (json)"
	case modeShowPatchPretty:
		return "patch (pretty)"
	case modeShowPatchDump:
		return "patch (dump)"
	default:
		return "unknown"
	}
}

// Backend provides the documents the list shows.
type Backend interface {
	Documents(ctx context.Context) ([]string, error)
	History(ctx context.Context, documentID string) ([]*service.Change, error)
}

type historyMsg struct {
	changes map[string][]*service.Change
}

type docEntry struct {
	changes  []*service.Change
	lastSeen time.Time
	open     bool
}

// ListView shows the revisions of every document on the left and the
// selected revision on the right.
type ListView struct {
	Base

	backend Backend

	left, right viewport.Model
	leftExtra   int

	docs map[string]*docEntry

	// ui state
	cursor     int
	focusRight bool
	renderMode renderMode
	fullscreen bool
	highlight  bool
}

var (
	_ View   = (*ListView)(nil)
	_ Initer = (*ListView)(nil)
)

func NewListView(backend Backend) *ListView {
	return &ListView{
		backend: backend,

		left:  viewport.New(5, 5), // will be overwritten by SetSize
		right: viewport.New(5, 5), // will be overwritten by SetSize

		docs:      make(map[string]*docEntry),
		highlight: true,
	}
}

// Init loads the history of every document.
func (lv *ListView) Init() tea.Cmd {
	return lv.load
}

func (lv *ListView) load() tea.Msg {
	ctx := context.Background()
	ids, err := lv.backend.Documents(ctx)
	if err != nil {
		return NewAlert("loading documents", err, lv.load)
	}
	msg := historyMsg{changes: make(map[string][]*service.Change, len(ids))}
	for _, id := range ids {
		changes, err := lv.backend.History(ctx, id)
		if err != nil {
			return NewDocumentAlert(id, "loading history", err, lv.load)
		}
		msg.changes[id] = changes
	}
	return msg
}

func (lv *ListView) Breadcrumb() string {
	return "list"
}

func (lv *ListView) calculateViewportSizes() {
	if lv.fullscreen {
		lv.right.Width = lv.Width
		lv.right.Height = lv.Height
		return
	}
	leftWidth := (lv.Width/2 + lv.leftExtra) - 2           // 2 for border right and left
	lv.left.Width, lv.left.Height = leftWidth, lv.Height-2 // -2 for viewport border

	rightWidth := lv.Width - leftWidth - 4                    // 4 for border right and left
	lv.right.Width, lv.right.Height = rightWidth, lv.Height-2 // -2 for viewport border
}

// SetSize sets the size of the left and right panes.
// It is overridden from the Base struct to be able to set the size of the left and right panes
// based on the current mode (fullscreen or not).
func (lv *ListView) SetSize(width, height int) {
	lv.Base.SetSize(width, height)
	lv.calculateViewportSizes()
}

func (lv *ListView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch v := msg.(type) {
	case historyMsg:
		for id, changes := range v.changes {
			entry := lv.entry(id)
			entry.changes = changes
			if len(changes) > 0 {
				entry.lastSeen = changes[len(changes)-1].Revision.Time
			}
		}

	case commitMsg:
		entry := lv.entry(v.DocumentID)
		entry.changes = append(entry.changes, v.Change)
		entry.lastSeen = v.Change.Revision.Time

	case tea.KeyMsg:
		if cmd := lv.handleKey(v); cmd != nil {
			return lv, cmd
		}
	}

	lv.renderLeft()
	lv.renderRight()
	return lv, nil
}

func (lv *ListView) entry(documentID string) *docEntry {
	entry := lv.docs[documentID]
	if entry == nil {
		entry = &docEntry{open: true}
		lv.docs[documentID] = entry
	}
	return entry
}

func (lv *ListView) View() string {
	if lv.fullscreen {
		return lv.right.View()
	}
	leftBox := ternary(lv.focusRight, lv.Theme.BorderIdleContainerStyle, lv.Theme.BorderActiveContainerStyle).
		Render(lv.left.View())
	rightBox := ternary(lv.focusRight, lv.Theme.BorderActiveContainerStyle, lv.Theme.BorderIdleContainerStyle).
		Render(lv.right.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
}

func (lv *ListView) KeyMap() string {
	help := new(HelpBar).
		// general shortcuts
		Hint("q", "quit").
		Hint("⇥", "focus").
		Hint("p", "mode").
		Hint("r", "reload").
		Hint("h", "highlight "+ternary(lv.highlight, "off", "on")).
		Hint("L", "log").

		// left-only shortcuts
		HintIf(!lv.focusRight, "↑/↓/pgup/pgdn", "scroll").
		HintIf(!lv.focusRight, "←/→", "collapse").
		HintIf(!lv.focusRight, "+/-", "resize").

		// right-only shortcuts
		HintIf(lv.focusRight, "↑/↓/←/→", "move").
		HintIf(lv.focusRight, "f", "fullscreen").
		Render(lv.Theme)

	mode := fmt.Sprintf("[mode: %s]", lv.Theme.PrimaryTextStyle.Render(lv.renderMode.String()))
	if _, change := lv.currentSelection(); change != nil {
		mode += " [" + renderSummary(diffy.Summarize(change.Patch), lv.Theme) + "]"
	}
	return mode + " " + help
}

// SelectedDocument returns the document under the cursor, or the document of
// the revision under the cursor.
func (lv *ListView) SelectedDocument() string {
	id, _ := lv.currentSelection()
	return id
}

func (lv *ListView) handleKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "q":
		return tea.Quit
	case "tab":
		lv.focusRight = !lv.focusRight
	case "p":
		lv.renderMode = (lv.renderMode + 1) % _modeMax
	case "h":
		lv.highlight = !lv.highlight
	case "r":
		return lv.load
	case "f":
		lv.fullscreen = !lv.fullscreen
		lv.calculateViewportSizes()
	case "+":
		lv.leftExtra = util.Clamp(lv.leftExtra+sizeSkip, -(lv.Width/2)+8, (lv.Width/2)-8)
		lv.calculateViewportSizes()
	case "-":
		lv.leftExtra = util.Clamp(lv.leftExtra-sizeSkip, -(lv.Width/2)+8, (lv.Width/2)-8)
		lv.calculateViewportSizes()
	default:
		if lv.focusRight {
			return ScrollViewport(k, &lv.right)
		}
		lv.navigateLeft(k)
	}
	return nil
}

func (lv *ListView) navigateLeft(k tea.KeyMsg) {
	last := max(lv.totalLines()-1, 0)
	switch k.String() {
	case "up", "k":
		lv.cursor = util.Clamp(lv.cursor-1, 0, last)
	case "down", "j":
		lv.cursor = util.Clamp(lv.cursor+1, 0, last)
	case "pgup":
		lv.cursor = util.Clamp(lv.cursor-pageScrollSkip, 0, last)
	case "pgdown":
		lv.cursor = util.Clamp(lv.cursor+pageScrollSkip, 0, last)
	case "left":
		lv.toggle(false)
	case "right", "enter", "l", " ":
		lv.toggle(true)
	}
	lv.cursor = util.Clamp(lv.cursor, 0, max(lv.totalLines()-1, 0))
	lv.keepVisible()
}

func (lv *ListView) keepVisible() {
	if lv.cursor < lv.left.YOffset {
		lv.left.YOffset = lv.cursor
	}
	if lv.cursor >= lv.left.YOffset+lv.left.Height {
		lv.left.YOffset = lv.cursor - lv.left.Height + 1
	}
}

// toggle expands or collapses the document under the cursor, or the document
// of the revision under the cursor.
func (lv *ListView) toggle(expand bool) {
	line := 0
	for _, id := range sortedKeys(lv.docs) {
		entry := lv.docs[id]
		end := line
		if entry.open {
			end += len(entry.changes)
		}
		if lv.cursor >= line && lv.cursor <= end {
			entry.open = expand
			if !expand {
				lv.cursor = line
			}
			return
		}
		line = end + 1
	}
}

func (lv *ListView) totalLines() int {
	n := 0
	for _, entry := range lv.docs {
		n++
		if entry.open {
			n += len(entry.changes)
		}
	}
	return n
}

// currentSelection returns the change under the cursor, nil if the cursor is
// on a document.
func (lv *ListView) currentSelection() (string, *service.Change) {
	line := 0
	for _, id := range sortedKeys(lv.docs) {
		entry := lv.docs[id]
		if line == lv.cursor {
			return id, nil
		}
		line++
		if !entry.open {
			continue
		}
		for _, change := range entry.changes {
			if line == lv.cursor {
				return id, change
			}
			line++
		}
	}
	return "", nil
}

func (lv *ListView) renderLeft() {
	var b strings.Builder
	now := time.Now()
	line := 0

	for _, id := range sortedKeys(lv.docs) {
		entry := lv.docs[id]

		// orange blink if recently seen
		style := lv.Theme.ListDocumentTextStyle
		if now.Sub(entry.lastSeen) < 3*time.Second {
			style = lv.Theme.ListActivityTextStyle
		}
		info := fmt.Sprintf("%s revs | %s",
			lv.Theme.ListRevisionTextStyle.Render(strconv.Itoa(len(entry.changes))),
			lv.Theme.MutedTextStyle.Render(humanize.Time(entry.lastSeen)))

		_, _ = fmt.Fprintf(&b, "%s %s %-32s %s\n",
			ternary(lv.cursor == line, lv.Theme.ListCurrentArrowTextStyle.Render(arrowRight), " "),
			ternary(entry.open, arrowDown, arrowRight),
			style.Render(id), info)
		line++

		if !entry.open {
			continue
		}
		for i, change := range entry.changes {
			isSelected := lv.cursor == line
			rev := change.Revision

			relTimeStr := ""
			if i > 0 {
				sub := rev.Time.Sub(entry.changes[i-1].Revision.Time).Truncate(time.Second)
				relTimeStr = fmt.Sprintf(" +%s", sub)
			}

			_, _ = fmt.Fprintf(&b, "    • %s: %s%s%s [%s] %s (%s%s)\n",
				lv.Theme.MutedTextStyle.Render(rev.Time.Format("02.01.2006 15:04:05")),
				ternary(isSelected, lv.Theme.ListCurrentArrowTextStyle.Render("["), " "),
				ternary(isSelected, lv.Theme.ListCurrentArrowTextStyle, lv.Theme.ListRevisionTextStyle).
					Render(rev.ID.String()),
				ternary(isSelected, lv.Theme.ListCurrentArrowTextStyle.Render("]"), " "),
				lv.Theme.MutedTextStyle.Render(humanize.Comma(int64(rev.Changes))+" changes"),
				lv.Theme.ListSourceTextStyle.Render(rev.Source),
				humanize.Time(rev.Time),
				lv.Theme.MutedTextStyle.Render(relTimeStr),
			)
			line++
		}
	}
	lv.left.SetContent(b.String())
}

func (lv *ListView) renderRight() {
	_, change := lv.currentSelection()
	if change == nil {
		lv.right.SetContent(lv.Theme.MutedTextStyle.Render(whereRevisionBanner))
		return
	}
	lv.right.SetContent(lv.renderChange(change))
}

func (lv *ListView) renderChange(change *service.Change) string {
	opts := diffpreview.DefaultRenderOptions
	opts.EnableBackgroundHighlight = lv.highlight

	switch lv.renderMode {
	case modeShowObjectPretty:
		return diffpreview.RenderPatch(change.Origin(), change.Patch, diffpreview.DarkTheme, opts)

	case modeShowObjectJSON:
		j, err := json.MarshalIndent(diffy.ToAny(change.Revision.Value), "", "  ")
		if err != nil {
			return lv.Theme.ErrorTextStyle.Render("error marshalling: " + err.Error())
		}
		return string(j)

	case modeShowPatchPretty:
		if diffy.IsDeepEqual(change.Origin(), change.Revision.Value) {
			return lv.Theme.MutedTextStyle.Render("no difference between versions")
		}
		opts.HideUnchanged = true
		return diffpreview.RenderPatch(change.Origin(), change.Patch, diffpreview.DarkTheme, opts)

	case modeShowPatchDump:
		return spew.Sdump(change.Patch)

	default:
		// this should never happen, but just in case
		return "I have no idea what to show you here"
	}
}

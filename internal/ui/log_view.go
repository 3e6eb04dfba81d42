package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logStyleInfo = lipgloss.NewStyle().
			Foreground(ColorBrightBlue).
			Padding(0, 1)
	logStyleWarning = lipgloss.NewStyle().
			Background(ColorOrange).
			Foreground(ColorBlack).
			Padding(0, 1)
	logStyleError = lipgloss.NewStyle().
			Background(ColorRed).
			Foreground(ColorWhite).
			Bold(true).
			Padding(0, 1)
)

// LogView lists the messages of a [UILogger]. It can be narrowed down to the
// document that was selected when it was opened and to a minimum level.
type LogView struct {
	Base

	viewport viewport.Model
	logger   *UILogger

	document     string
	onlyDocument bool
	minLevel     LogLevel
	autoscroll   bool
}

// NewLogView creates a log view. With a [documentID], the view starts out
// showing only the messages of that document.
func NewLogView(logger *UILogger, documentID string) *LogView {
	l := &LogView{
		logger:       logger,
		viewport:     viewport.New(10, 10),
		document:     documentID,
		onlyDocument: documentID != "",
		autoscroll:   true,
	}
	logger.peekUnread(true)
	l.renderLogView()
	return l
}

func (lv *LogView) SetSize(width int, height int) {
	lv.viewport.Width = width - 2
	lv.viewport.Height = height - 3
}

func (lv *LogView) Breadcrumb() string {
	if lv.onlyDocument {
		return "Log (" + lv.document + ")"
	}
	return "Log"
}

// visible returns the messages passing the document and level filters.
func (lv *LogView) visible() []LogMsg {
	var out []LogMsg
	for _, msg := range lv.logger.Messages() {
		if msg.Level < lv.minLevel {
			continue
		}
		if lv.onlyDocument && msg.Document != lv.document {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (lv *LogView) renderLogView() {
	var lines []string
	for _, msg := range lv.visible() {
		document := msg.Document
		if document == "" {
			document = "-"
		}
		lines = append(lines, fmt.Sprintf("%s [%-7s] %s: %s",
			msg.Time.Format("15:04:05"),
			levelString(msg.Level),
			lv.Theme.ListDocumentTextStyle.Render(document),
			msg.Text))
	}
	if len(lines) == 0 {
		lines = append(lines, lv.Theme.MutedTextStyle.Render("nothing logged yet"))
	}
	lv.viewport.SetContent(strings.Join(lines, "\n"))
}

func (lv *LogView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		switch v.String() {
		case "q", "esc":
			return lv, PushChangeView(Pop, nil)
		case "s":
			lv.autoscroll = !lv.autoscroll
		case "d":
			if lv.document == "" {
				return lv, nil
			}
			lv.onlyDocument = !lv.onlyDocument
		case "l":
			lv.minLevel = (lv.minLevel + 1) % (LogLevelError + 1)
		default:
			return lv, ScrollViewport(v, &lv.viewport)
		}
	case LogMsg:
		lv.logger.peekUnread(true)
	default:
		return lv, nil
	}

	lv.renderLogView()
	if lv.autoscroll {
		lv.viewport.GotoBottom()
	}
	return lv, nil
}

func (lv *LogView) View() string {
	return fmt.Sprintf("Log (%d/%d) [level ≥ %s] [autoscroll %s]\n\n%s",
		len(lv.visible()),
		len(lv.logger.Messages()),
		levelString(lv.minLevel),
		ternary(lv.autoscroll, "on", "off"),
		lv.Theme.BorderIdleContainerStyle.Render(lv.viewport.View()))
}

func (lv *LogView) KeyMap() string {
	return new(HelpBar).
		Hint("q/esc", "go back").
		Hint("s", "toggle autoscroll").
		Hint("l", "minimum level").
		HintIf(lv.document != "", "d", ternary(lv.onlyDocument, "all documents", "only "+lv.document)).
		Render(lv.Theme)
}

func levelString(level LogLevel) string {
	switch level {
	case LogLevelInfo:
		return logStyleInfo.Render("INFO")
	case LogLevelWarning:
		return logStyleWarning.Render("WARN")
	case LogLevelError:
		return logStyleError.Render("ERROR")
	default:
		return "unknown"
	}
}

package ui

import (
	"strconv"
	"strings"

	"github.com/loog-project/diffy/pkg/diffy"
)

type keyHint struct {
	keys  string
	label string
}

// HelpBar collects the key hints a view shows in the status bar.
type HelpBar struct {
	hints []keyHint
}

// Hint adds keys with their label.
func (h *HelpBar) Hint(keys, label string) *HelpBar {
	h.hints = append(h.hints, keyHint{keys: keys, label: label})
	return h
}

// HintIf adds the hint only if cond holds.
func (h *HelpBar) HintIf(cond bool, keys, label string) *HelpBar {
	if cond {
		h.Hint(keys, label)
	}
	return h
}

func (h *HelpBar) Render(theme Theme) string {
	var bob strings.Builder
	for i, hint := range h.hints {
		if i != 0 {
			bob.WriteString(theme.MutedTextStyle.Render(", "))
		}
		bob.WriteString(hint.keys)
		bob.WriteString(" ")
		bob.WriteString(theme.MutedTextStyle.Render(hint.label))
	}
	return bob.String()
}

// renderSummary renders the instruction counts of a revision's patch, e.g.
// "2 set, 1 removed".
func renderSummary(s diffy.Summary, theme Theme) string {
	if s.Changes() == 0 {
		return theme.MutedTextStyle.Render("no changes")
	}
	var parts []string
	if s.Set > 0 {
		parts = append(parts, theme.PrimaryTextStyle.Render(strconv.Itoa(s.Set)+" set"))
	}
	if s.Removed > 0 {
		parts = append(parts, theme.ErrorTextStyle.Render(strconv.Itoa(s.Removed)+" removed"))
	}
	if s.Created > 0 {
		parts = append(parts, theme.ListActivityTextStyle.Render(strconv.Itoa(s.Created)+" created"))
	}
	return strings.Join(parts, theme.MutedTextStyle.Render(", "))
}

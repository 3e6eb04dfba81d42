package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/diffy/internal/service"
	"github.com/loog-project/diffy/internal/store"
	"github.com/loog-project/diffy/pkg/diffy"
)

func TestAlertDetails(t *testing.T) {
	tests := []struct {
		name     string
		document string
		err      error
		want     []string
	}{
		{
			name:     "apply error",
			document: "a.yaml",
			err:      &diffy.ApplyError{Path: []string{"spec", "replicas"}, Err: diffy.ErrMissingOrigin},
			want: []string{
				"document: a.yaml",
				"patch path: spec.replicas",
				"the patch was computed against another revision",
			},
		},
		{
			name: "apply error at the root",
			err:  fmt.Errorf("update cached state: %w", &diffy.ApplyError{Err: diffy.ErrUnexpectedRemove}),
			want: []string{"patch path: (root)"},
		},
		{
			name:     "broken chain",
			document: "b.yaml",
			err:      fmt.Errorf("broken chain at 3: %w", store.ErrInvalidRevision),
			want:     []string{"document: b.yaml", "the revision chain of the document is broken"},
		},
		{
			name: "unchanged",
			err:  service.UnchangedError{Revision: 2},
			want: []string{"latest revision: " + store.RevisionID(2).String()},
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alertDetails(tt.document, tt.err))
		})
	}
}

func TestAlertViewRetry(t *testing.T) {
	plain := &AlertView{Title: "loading documents", Err: errors.New("boom")}
	_, cmd := plain.Update(key("r"))
	assert.Nil(t, cmd, "nothing to retry")
	assert.NotContains(t, plain.KeyMap(), "retry")

	retry := &AlertView{
		Title: "loading history",
		Err:   errors.New("boom"),
		Retry: func() tea.Msg { return nil },
	}
	_, cmd = retry.Update(key("r"))
	assert.NotNil(t, cmd)
	assert.Contains(t, retry.KeyMap(), "retry")
}

func TestRootOpensDocumentAlert(t *testing.T) {
	root := *NewRoot(DarkTheme, NewUILogger(), newTestList(t))

	_, cmd := root.Update(NewDocumentAlert("a.yaml", "loading history", store.ErrNotFound, nil))
	require.NotNil(t, cmd)
	push, ok := cmd().(pushViewMsg)
	require.True(t, ok)

	alert, ok := push.view.(*AlertView)
	require.True(t, ok)
	assert.Equal(t, "a.yaml", alert.Document)
	assert.Equal(t, "Error (loading history, a.yaml)", alert.Breadcrumb())
}

func TestRootOpensLogOfSelectedDocument(t *testing.T) {
	lv := newTestList(t)
	lv.Update(key("down")) // first revision of a.yaml
	root := *NewRoot(DarkTheme, NewUILogger(), lv)

	_, cmd := root.Update(key("L"))
	require.NotNil(t, cmd)
	push, ok := cmd().(pushViewMsg)
	require.True(t, ok)

	logView, ok := push.view.(*LogView)
	require.True(t, ok)
	assert.Equal(t, "a.yaml", logView.document)
	assert.True(t, logView.onlyDocument)
}

func TestLogViewFilters(t *testing.T) {
	l := NewUILogger()
	l.Infof("a.yaml", "committed")
	l.Warningf("b.yaml", "slow")
	l.Errorf("", "watcher failed")

	texts := func(v *LogView) []string {
		var out []string
		for _, msg := range v.visible() {
			out = append(out, msg.Text)
		}
		return out
	}

	v := NewLogView(l, "a.yaml")
	assert.Equal(t, []string{"committed"}, texts(v))

	v.Update(key("d"))
	assert.Equal(t, []string{"committed", "slow", "watcher failed"}, texts(v))

	v.Update(key("l"))
	assert.Equal(t, []string{"slow", "watcher failed"}, texts(v))
	v.Update(key("l"))
	assert.Equal(t, []string{"watcher failed"}, texts(v))
	v.Update(key("l"))
	assert.Len(t, texts(v), 3, "level filter wraps around")

	// without a selected document there is nothing to narrow down to
	all := NewLogView(l, "")
	all.Update(key("d"))
	assert.False(t, all.onlyDocument)
	assert.Len(t, texts(all), 3)
}

func TestRenderSummary(t *testing.T) {
	assert.Equal(t, "no changes", renderSummary(diffy.Summary{}, Theme{}))
	assert.Equal(t, "2 set, 1 removed", renderSummary(diffy.Summary{Set: 2, Removed: 1}, Theme{}))
	assert.Equal(t, "1 created", renderSummary(diffy.Summary{Created: 1}, Theme{}))
}

func TestListViewKeyMapShowsSummary(t *testing.T) {
	lv := newTestList(t)
	assert.NotContains(t, lv.KeyMap(), " set")

	lv.Update(key("down"))
	lv.Update(key("down")) // second revision of a.yaml
	assert.True(t, strings.Contains(lv.KeyMap(), "1 set"), lv.KeyMap())
}

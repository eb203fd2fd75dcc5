package confirm

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelitsyn-sc/zappifest/internal/diff"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testRows() []diff.Row {
	return []diff.Row{
		{Left: "{", Right: "{"},
		{Left: `  "name": "Old"`, Right: `  "name": "New"`, Kind: diff.Changed},
		{Left: "}", Right: "}"},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestConfirm_Yes(t *testing.T) {
	m, cmd := update(t, New("Update?", testRows()), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.True(t, m.Answered())
	assert.True(t, m.Approved())
	assert.Contains(t, m.View(), "Update? yes")
}

func TestConfirm_EnterDeclines(t *testing.T) {
	m, cmd := update(t, New("Update?", testRows()), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Answered())
	assert.False(t, m.Approved())
}

func TestConfirm_Cancel(t *testing.T) {
	m, _ := update(t, New("Update?", testRows()), tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.Cancelled())
	assert.False(t, m.Answered())
}

func TestConfirm_OtherKeysIgnored(t *testing.T) {
	m, cmd := update(t, New("Update?", testRows()), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, m.Answered())
}

func TestConfirm_View(t *testing.T) {
	m, _ := update(t, New("Update?", testRows()), tea.WindowSizeMsg{Width: 70, Height: 20})
	view := m.View()
	assert.Contains(t, view, "Remote")
	assert.Contains(t, view, `~   "name": "New"`)
	assert.Contains(t, view, "1 changed, 0 removed, 0 added")
	assert.Contains(t, view, "Update? (y/N)")
	assert.Contains(t, view, "y update")
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr error
	}{
		{"yes", "y", true, nil},
		{"no", "n", false, nil},
		{"enter", "\r", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run("Update?", testRows(), strings.NewReader(tt.input), io.Discard)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestPicker_KeyAssignments(t *testing.T) {
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Up", Picker.Up, []string{"k", "up", "ctrl+p"}},
		{"Down", Picker.Down, []string{"j", "down", "ctrl+n"}},
		{"Select", Picker.Select, []string{"enter"}},
		{"Cancel", Picker.Cancel, []string{"esc", "ctrl+c", "q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

func TestConfirm_EnterDeclines(t *testing.T) {
	// Enter must never approve an update.
	require.Contains(t, Confirm.No.Keys(), "enter")
	require.NotContains(t, Confirm.Yes.Keys(), "enter")
}

func TestHelpLine(t *testing.T) {
	require.Equal(t, "y update • n keep remote • esc cancel", HelpLine(Confirm.ShortHelp()))
	require.Len(t, Picker.FullHelp(), 1)
	require.Len(t, Confirm.FullHelp()[0], 3)
}

func TestHelpLine_SkipsDisabled(t *testing.T) {
	disabled := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"), key.WithDisabled())
	require.Equal(t, "enter select", HelpLine([]key.Binding{disabled, Picker.Select}))
}

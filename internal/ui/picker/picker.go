// Package picker provides the plugin picker shown when several registry
// entries match a manifest.
package picker

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stelitsyn-sc/zappifest/internal/keys"
	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/ui/styles"
)

// ErrCancelled is returned when the user leaves the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Model holds the picker state.
type Model struct {
	title     string
	options   []string
	selected  int
	chosen    bool
	cancelled bool
	boxWidth  int
}

// New creates a new picker with the given title and options.
func New(title string, options []string) Model {
	return Model{title: title, options: options}
}

// SetBoxWidth sets the width of the picker box.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// Selected returns the highlighted index.
func (m Model) Selected() int {
	return m.selected
}

// Chosen reports whether the user confirmed a selection.
func (m Model) Chosen() bool {
	return m.chosen
}

// Cancelled reports whether the user left without choosing.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.boxWidth == 0 || m.boxWidth > msg.Width-2 {
			m.boxWidth = max(msg.Width-2, 10)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Picker.Down):
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case key.Matches(msg, keys.Picker.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, keys.Picker.Select):
			if len(m.options) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
		case key.Matches(msg, keys.Picker.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the picker box.
func (m Model) View() string {
	if m.chosen || m.cancelled {
		return ""
	}

	width := m.boxWidth
	if width == 0 {
		width = m.naturalWidth()
	}

	var options strings.Builder
	for i, opt := range m.options {
		label := styles.TruncateString(opt, width-2)
		if i == m.selected {
			options.WriteString(styles.SelectionIndicatorStyle.Render(">") + lipgloss.NewStyle().Bold(true).Render(label))
		} else {
			options.WriteString(" " + label)
		}
		if i < len(m.options)-1 {
			options.WriteString("\n")
		}
	}

	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))
	content := styles.TitleStyle.PaddingLeft(1).Render(m.title) + "\n" +
		divider + "\n" +
		options.String()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content)
	return box + "\n" + styles.HelpStyle.Render(keys.HelpLine(keys.Picker.ShortHelp())) + "\n"
}

func (m Model) naturalWidth() int {
	width := lipgloss.Width(m.title) + 2
	for _, opt := range m.options {
		width = max(width, lipgloss.Width(opt)+2)
	}
	return max(width, 25)
}

// Run shows the picker on out, reads keys from in and returns the chosen
// index. Closing the picker without a choice returns ErrCancelled.
func Run(title string, options []string, in io.Reader, out io.Writer) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options to choose from")
	}

	p := tea.NewProgram(New(title, options), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok || !m.Chosen() {
		log.Info(log.CatUI, "Picker cancelled")
		return -1, ErrCancelled
	}
	log.Debug(log.CatUI, "Picker selection", "index", m.Selected(), "option", options[m.Selected()])
	return m.Selected(), nil
}

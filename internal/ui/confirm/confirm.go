// Package confirm asks whether to push local manifest changes over the
// remote plugin, showing the diff first.
package confirm

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stelitsyn-sc/zappifest/internal/diff"
	"github.com/stelitsyn-sc/zappifest/internal/keys"
	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/ui/difftable"
	"github.com/stelitsyn-sc/zappifest/internal/ui/styles"
)

// ErrCancelled is returned when the prompt is closed without an answer.
var ErrCancelled = errors.New("confirmation cancelled")

// Model holds the prompt state.
type Model struct {
	prompt    string
	rows      []diff.Row
	width     int
	answered  bool
	approved  bool
	cancelled bool
}

// New creates a prompt for rows.
func New(prompt string, rows []diff.Row) Model {
	return Model{prompt: prompt, rows: rows}
}

// SetWidth sets the width the diff table is laid out in.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Approved reports whether the user answered yes.
func (m Model) Approved() bool { return m.approved }

// Answered reports whether the user answered at all.
func (m Model) Answered() bool { return m.answered }

// Cancelled reports whether the prompt was closed without an answer.
func (m Model) Cancelled() bool { return m.cancelled }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Confirm.Yes):
			m.answered, m.approved = true, true
			return m, tea.Quit
		case key.Matches(msg, keys.Confirm.No):
			m.answered = true
			return m, tea.Quit
		case key.Matches(msg, keys.Confirm.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the diff table followed by the question.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(difftable.Render(m.rows, m.width))

	changed, removed, added := difftable.Summary(m.rows)
	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("%d changed, %d removed, %d added", changed, removed, added)))
	b.WriteString("\n\n")

	switch {
	case m.answered && m.approved:
		b.WriteString(m.prompt + " " + styles.SuccessStyle.Render("yes") + "\n")
	case m.answered:
		b.WriteString(m.prompt + " " + styles.WarningStyle.Render("no") + "\n")
	case m.cancelled:
		b.WriteString(m.prompt + " " + styles.WarningStyle.Render("cancelled") + "\n")
	default:
		b.WriteString(styles.TitleStyle.Render(m.prompt) + " (y/N)\n")
		b.WriteString(styles.HelpStyle.Render(keys.HelpLine(keys.Confirm.ShortHelp())) + "\n")
	}
	return b.String()
}

// Run shows the prompt on out and reads the answer from in.
func Run(prompt string, rows []diff.Row, in io.Reader, out io.Writer) (bool, error) {
	p := tea.NewProgram(New(prompt, rows), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.Cancelled() || !m.Answered() {
		log.Info(log.CatUI, "Confirmation cancelled")
		return false, ErrCancelled
	}
	log.Debug(log.CatUI, "Confirmation answered", "approved", m.Approved())
	return m.Approved(), nil
}

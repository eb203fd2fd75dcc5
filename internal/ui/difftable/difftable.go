// Package difftable renders diff rows as a two-column terminal table with
// the remote manifest on the left and the local one on the right.
package difftable

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stelitsyn-sc/zappifest/internal/diff"
	"github.com/stelitsyn-sc/zappifest/internal/ui/styles"
)

// Column headers.
const (
	RemoteHeader = "Remote"
	LocalHeader  = "Local"
)

const (
	separator = " │ "
	markWidth = 2

	// DefaultWidth is used when the terminal width is unknown.
	DefaultWidth = 120
	minColWidth  = 12
)

// Render lays rows out in two columns that fit within width cells.
func Render(rows []diff.Row, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	col := max((width-lipgloss.Width(separator))/2-markWidth, minColWidth)

	headerStyle := styles.TitleStyle.Underline(true)
	sepStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	contextStyle := lipgloss.NewStyle().Foreground(styles.DiffContextColor)
	delStyle := lipgloss.NewStyle().Foreground(styles.DiffDeletionColor)
	addStyle := lipgloss.NewStyle().Foreground(styles.DiffAdditionColor)
	changeStyle := lipgloss.NewStyle().Foreground(styles.DiffChangeColor)

	var b strings.Builder
	b.WriteString(headerStyle.Render(styles.PadRight(RemoteHeader, col+markWidth)))
	b.WriteString(sepStyle.Render(separator))
	b.WriteString(headerStyle.Render(LocalHeader))
	b.WriteString("\n")

	for _, r := range rows {
		var leftMark, rightMark string
		var leftStyle, rightStyle lipgloss.Style
		switch r.Kind {
		case diff.Changed:
			leftMark, rightMark = "~ ", "~ "
			leftStyle, rightStyle = changeStyle, changeStyle
		case diff.Removed:
			leftMark, rightMark = "- ", "  "
			leftStyle, rightStyle = delStyle, contextStyle
		case diff.Added:
			leftMark, rightMark = "  ", "+ "
			leftStyle, rightStyle = contextStyle, addStyle
		default:
			leftMark, rightMark = "  ", "  "
			leftStyle, rightStyle = contextStyle, contextStyle
		}

		b.WriteString(leftStyle.Render(leftMark + cell(r.Left, col)))
		b.WriteString(sepStyle.Render(separator))
		b.WriteString(rightStyle.Render(rightMark + strings.TrimRight(cell(r.Right, col), " ")))
		b.WriteString("\n")
	}
	return b.String()
}

// cell fits plain text into exactly width cells.
func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", "  ")
	return styles.PadRight(styles.TruncateString(s, width), width)
}

// Summary counts the rows of each kind that differ.
func Summary(rows []diff.Row) (changed, removed, added int) {
	for _, r := range rows {
		switch r.Kind {
		case diff.Changed:
			changed++
		case diff.Removed:
			removed++
		case diff.Added:
			added++
		}
	}
	return changed, removed, added
}

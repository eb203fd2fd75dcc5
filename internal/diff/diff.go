// Package diff renders the remote and local manifests as a two-column line
// comparison.
package diff

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a row of the comparison.
type Kind int

const (
	Equal Kind = iota
	Changed
	Removed
	Added
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	case Added:
		return "added"
	default:
		return "unknown"
	}
}

// Row is one line of the two-column comparison. Left is the remote side.
type Row struct {
	Left  string
	Right string
	Kind  Kind
}

// Canonical pretty-prints v as JSON with sorted object keys and a two space
// indent. HTML characters are left unescaped.
func Canonical(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SideBySide compares the canonical forms of remote and local line by line.
func SideBySide(remote, local map[string]any) ([]Row, error) {
	left, err := Canonical(remote)
	if err != nil {
		return nil, err
	}
	right, err := Canonical(local)
	if err != nil {
		return nil, err
	}
	return Lines(left, right), nil
}

// Lines diffs two texts line by line. Adjacent removals and additions are
// paired into Changed rows.
func Lines(left, right string) []Row {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var rows []Row
	var removed, added []string
	flush := func() {
		n := max(len(removed), len(added))
		for i := 0; i < n; i++ {
			switch {
			case i < len(removed) && i < len(added):
				rows = append(rows, Row{Left: removed[i], Right: added[i], Kind: Changed})
			case i < len(removed):
				rows = append(rows, Row{Left: removed[i], Kind: Removed})
			default:
				rows = append(rows, Row{Right: added[i], Kind: Added})
			}
		}
		removed, added = nil, nil
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed = append(removed, lines...)
		case diffmatchpatch.DiffInsert:
			added = append(added, lines...)
		case diffmatchpatch.DiffEqual:
			flush()
			for _, line := range lines {
				rows = append(rows, Row{Left: line, Right: line, Kind: Equal})
			}
		}
	}
	flush()
	return rows
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

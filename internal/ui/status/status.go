// Package status prints publish progress messages to the terminal.
package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/publish"
	"github.com/stelitsyn-sc/zappifest/internal/ui/styles"
)

// Printer writes one styled line per message. It implements publish.Sink.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewPrinter creates a Printer. Warnings and errors go to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Emit writes text styled for level.
func (p *Printer) Emit(level publish.Level, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.out
	var line string
	switch level {
	case publish.LevelSuccess:
		line = styles.SuccessStyle.Render(text)
	case publish.LevelWarn:
		w = p.err
		line = styles.WarningStyle.Render("warning: " + text)
	case publish.LevelError:
		w = p.err
		line = styles.ErrorStyle.Render(text)
	default:
		line = styles.InfoStyle.Render(text)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		log.ErrorErr(log.CatUI, "Failed to print status", err, "level", level.String())
	}
}

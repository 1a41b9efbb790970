package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/devskill-org/sunclock/report"
	"golang.org/x/term"
)

const (
	saveCursor    = "\x1b7"
	restoreCursor = "\x1b8"
	clearDown     = "\x1b[J"
	hideCursor    = "\x1b[?25l"
	showCursor    = "\x1b[?25h"
)

// Terminal writes poll reports to a terminal. In JSON mode each report is
// a single line. In watch mode text reports are redrawn in place when the
// output is a terminal and appended otherwise.
type Terminal struct {
	w       io.Writer
	json    bool
	watch   bool
	redraw  bool
	mu      sync.Mutex
	started bool
}

// NewTerminal returns a Terminal sink writing to w.
func NewTerminal(w io.Writer, asJSON, watch bool) *Terminal {
	t := &Terminal{w: w, json: asJSON, watch: watch}
	if f, ok := w.(*os.File); ok && watch && !asJSON {
		t.redraw = term.IsTerminal(int(f.Fd()))
	}
	return t
}

// Publish implements Sink.
func (t *Terminal) Publish(_ context.Context, r *report.PollReport) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.json {
		buf, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode poll report: %w", err)
		}
		_, err = fmt.Fprintf(t.w, "%s\n", buf)
		return err
	}

	if !t.watch {
		_, err := fmt.Fprintln(t.w, r.String())
		return err
	}

	if !t.started {
		t.started = true
		if _, err := io.WriteString(t.w, "Displaying solar calculations in real time. Press ctrl+C to cancel.\n\n"); err != nil {
			return err
		}
		if t.redraw {
			if _, err := io.WriteString(t.w, saveCursor+hideCursor); err != nil {
				return err
			}
		}
	}
	if t.redraw {
		if _, err := io.WriteString(t.w, restoreCursor+clearDown); err != nil {
			return err
		}
		_, err := io.WriteString(t.w, r.String())
		return err
	}
	_, err := fmt.Fprintln(t.w, r.String())
	return err
}

// Close restores the cursor if it was hidden.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.redraw && t.started {
		_, err := io.WriteString(t.w, showCursor)
		return err
	}
	return nil
}

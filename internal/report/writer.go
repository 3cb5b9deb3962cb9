package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/starford/tgaquery/internal/apperr"
	"github.com/starford/tgaquery/internal/sparql"
)

// Writer appends titled sections to one report. Errors are sticky: after the
// first failed write every call returns the same apperr.ErrWrite error.
type Writer struct {
	path     string
	bw       *bufio.Writer
	closer   io.Closer
	sections int
	err      error
}

// Create truncates or creates the report file at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w: %w", path, apperr.ErrWrite, err)
	}
	return &Writer{path: path, bw: bufio.NewWriter(f), closer: f}, nil
}

// NewWriter writes sections to w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{path: "report", bw: bufio.NewWriter(w)}
}

// Section writes "=== title ===", the rendered table and a terminating blank line.
func (w *Writer) Section(title string, t *sparql.Table) error {
	if w.err != nil {
		return w.err
	}
	if _, err := fmt.Fprintf(w.bw, "=== %s ===\n", title); err != nil {
		return w.fail(err)
	}
	if err := Render(w.bw, t); err != nil {
		return w.fail(err)
	}
	if _, err := w.bw.WriteString("\n"); err != nil {
		return w.fail(err)
	}
	// Completed sections reach the destination even if a later one fails.
	if err := w.bw.Flush(); err != nil {
		return w.fail(err)
	}
	w.sections++
	return nil
}

// Sections returns how many sections were written completely.
func (w *Writer) Sections() int { return w.sections }

// Path returns the report destination.
func (w *Writer) Path() string { return w.path }

// Close flushes buffered output and releases the file. It is safe to call
// after a failed Section; the first error is returned.
func (w *Writer) Close() error {
	flushErr := w.bw.Flush()
	var closeErr error
	if w.closer != nil {
		closeErr = w.closer.Close()
		w.closer = nil
	}
	if w.err != nil {
		return w.err
	}
	if flushErr != nil {
		return w.fail(flushErr)
	}
	if closeErr != nil {
		return w.fail(closeErr)
	}
	return nil
}

func (w *Writer) fail(err error) error {
	w.err = fmt.Errorf("write report %s: %w: %w", w.path, apperr.ErrWrite, err)
	return w.err
}

package output

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// Formatter receives the action stream of each pass and renders it.
// Implementations include human-readable and JSON formatters.
type Formatter interface {
	// Start announces a new pass. report carries the pass ID and paths.
	Start(report *models.PassReport) error

	// Record reports one attempted action
	Record(record models.ActionRecord) error

	// Complete finalizes the pass and displays its summary
	Complete(report *models.PassReport) error

	// Error reports an error outside of any single action
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter registered under name, writing to w
func New(name string, w io.Writer, quiet bool) Formatter {
	switch name {
	case "json":
		return NewJSONFormatter(w)
	default:
		return NewHumanFormatter(w, quiet)
	}
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// HumanFormatter prints one action log line per record and a short
// summary for each pass that did something.
type HumanFormatter struct {
	writer io.Writer
	quiet  bool // only skipped records and errors

	// Idle passes print a heartbeat on terminals only
	heartbeat bool
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(writer io.Writer, quiet bool) *HumanFormatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &HumanFormatter{
		writer:    writer,
		quiet:     quiet,
		heartbeat: !quiet && isTerminal(writer),
	}
}

// Start is a no-op; passes are announced by their first action
func (f *HumanFormatter) Start(report *models.PassReport) error {
	return nil
}

// Record prints an action log line
func (f *HumanFormatter) Record(record models.ActionRecord) error {
	if f.quiet && record.Applied() {
		return nil
	}
	_, err := fmt.Fprintln(f.writer, record.String())
	return err
}

// Complete prints the pass summary
func (f *HumanFormatter) Complete(report *models.PassReport) error {
	stats := report.Stats
	idle := stats.Changes() == 0 && stats.Skipped == 0 && len(report.Errors) == 0

	if idle {
		if f.heartbeat && report.Status != models.StatusCancelled {
			fmt.Fprintf(f.writer, "%s in sync (%s)\n",
				time.Now().Format("15:04:05"), report.Duration.Round(time.Millisecond))
		}
		return nil
	}

	for _, passErr := range report.Errors {
		fmt.Fprintf(f.writer, "SKIP LEVEL: '%s': %s\n", passErr.Path, passErr.Error)
	}

	if f.quiet {
		return nil
	}

	fmt.Fprintf(f.writer,
		"Pass %s in %s: %d files created, %d dirs created, %d updated, %d removed, %d skipped, %s copied\n",
		report.Status,
		report.Duration.Round(time.Millisecond),
		stats.FilesCreated,
		stats.DirsCreated,
		stats.FilesUpdated,
		stats.EntriesRemoved,
		stats.Skipped+stats.LevelsFailed,
		humanize.IBytes(uint64(stats.BytesCopied)),
	)

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	_, werr := fmt.Fprintf(f.writer, "Error: %v\n", err)
	return werr
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// WriteDifferencesReport writes the actions of a pass to a file.
// Format can be "human" or "json". A pass without records writes nothing.
func WriteDifferencesReport(report *models.PassReport, path string, format string) error {
	if len(report.Records) == 0 {
		// No differences - don't create empty file
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeDifferencesJSON(report, file)
	default: // "human"
		return writeDifferencesHuman(report, file)
	}
}

type recordGroup struct {
	action  models.Action
	outcome models.Outcome
	label   string
}

var recordGroups = []recordGroup{
	{models.ActionUpdate, models.OutcomeSkipped, "Update Errors"},
	{models.ActionRemove, models.OutcomeSkipped, "Removal Errors"},
	{models.ActionCreate, models.OutcomeSkipped, "Copy Errors"},
	{models.ActionUpdate, models.OutcomePlanned, "Content Differences"},
	{models.ActionRemove, models.OutcomePlanned, "Only in Destination"},
	{models.ActionCreate, models.OutcomePlanned, "Only in Source"},
	{models.ActionUpdate, models.OutcomeApplied, "Updated"},
	{models.ActionRemove, models.OutcomeApplied, "Removed"},
	{models.ActionCreate, models.OutcomeApplied, "Created"},
}

// writeDifferencesHuman writes differences in human-readable format
func writeDifferencesHuman(report *models.PassReport, w io.Writer) error {
	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Pass: %s\n", report.PassID)
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Destination: %s\n", report.DestPath)
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(report.Records))

	for _, group := range recordGroups {
		var records []models.ActionRecord
		for _, rec := range report.Records {
			if rec.Action == group.action && rec.Outcome == group.outcome {
				records = append(records, rec)
			}
		}
		if len(records) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d entries)", group.label, len(records))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, rec := range records {
			name := rec.DestPath
			if rec.IsDir {
				name += "/"
			}
			fmt.Fprintf(w, "  %s\n", name)
			if rec.Reason != "" {
				fmt.Fprintf(w, "    Reason: %s\n", rec.Reason)
			}
			if rec.Bytes > 0 {
				fmt.Fprintf(w, "    Copied: %s\n", humanize.IBytes(uint64(rec.Bytes)))
			}
		}

		fmt.Fprintf(w, "\n")
	}

	if len(report.Errors) > 0 {
		label := fmt.Sprintf("Unreadable Directories (%d)", len(report.Errors))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
		for _, passErr := range report.Errors {
			fmt.Fprintf(w, "  %s\n    Reason: %s\n", passErr.Path, passErr.Error)
		}
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(report *models.PassReport, w io.Writer) error {
	records := make([]JSONActionData, 0, len(report.Records))
	for _, rec := range report.Records {
		records = append(records, actionData(rec))
	}

	errors := make([]JSONErrorData, 0, len(report.Errors))
	for _, passErr := range report.Errors {
		errors = append(errors, JSONErrorData{Path: passErr.Path, Error: passErr.Error})
	}

	output := struct {
		Generated   string           `json:"generated"`
		PassID      string           `json:"pass_id"`
		SourcePath  string           `json:"source_path"`
		DestPath    string           `json:"dest_path"`
		Status      string           `json:"status"`
		TotalCount  int              `json:"total_count"`
		Differences []JSONActionData `json:"differences"`
		Errors      []JSONErrorData  `json:"errors"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		PassID:      report.PassID,
		SourcePath:  report.SourcePath,
		DestPath:    report.DestPath,
		Status:      string(report.Status),
		TotalCount:  len(report.Records),
		Differences: records,
		Errors:      errors,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// JSONFormatter writes one JSON object per line for automation and scripting
type JSONFormatter struct {
	encoder *json.Encoder
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	PassID    string    `json:"pass_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a pass_start event
type JSONStartData struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// JSONActionData represents one action record
type JSONActionData struct {
	Action  string `json:"action"`
	Source  string `json:"source,omitempty"`
	Dest    string `json:"dest"`
	IsDir   bool   `json:"is_dir,omitempty"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Bytes   int64  `json:"bytes,omitempty"`
}

// JSONReportData represents the pass summary
type JSONReportData struct {
	Status     string          `json:"status"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Stats      JSONStatsData   `json:"stats"`
	Errors     []JSONErrorData `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	LevelsCompared int   `json:"levels_compared"`
	LevelsFailed   int   `json:"levels_failed"`
	FilesCompared  int   `json:"files_compared"`
	FilesCreated   int   `json:"files_created"`
	DirsCreated    int   `json:"dirs_created"`
	FilesUpdated   int   `json:"files_updated"`
	EntriesRemoved int   `json:"entries_removed"`
	Skipped        int   `json:"skipped"`
	TypeMismatches int   `json:"type_mismatches"`
	BytesCopied    int64 `json:"bytes_copied"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.Writer) *JSONFormatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONFormatter{encoder: json.NewEncoder(writer)}
}

// Start emits a pass_start event
func (f *JSONFormatter) Start(report *models.PassReport) error {
	return f.emit("pass_start", report.PassID, JSONStartData{
		Source: report.SourcePath,
		Dest:   report.DestPath,
	})
}

// Record emits an action event
func (f *JSONFormatter) Record(record models.ActionRecord) error {
	return f.emit("action", record.PassID, actionData(record))
}

func actionData(record models.ActionRecord) JSONActionData {
	return JSONActionData{
		Action:  string(record.Action),
		Source:  record.SourcePath,
		Dest:    record.DestPath,
		IsDir:   record.IsDir,
		Outcome: string(record.Outcome),
		Reason:  record.Reason,
		Bytes:   record.Bytes,
	}
}

// Complete emits a pass_complete event
func (f *JSONFormatter) Complete(report *models.PassReport) error {
	var errors []JSONErrorData
	for _, err := range report.Errors {
		errors = append(errors, JSONErrorData{Path: err.Path, Error: err.Error})
	}

	s := report.Stats
	return f.emit("pass_complete", report.PassID, JSONReportData{
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			LevelsCompared: s.LevelsCompared,
			LevelsFailed:   s.LevelsFailed,
			FilesCompared:  s.FilesCompared,
			FilesCreated:   s.FilesCreated,
			DirsCreated:    s.DirsCreated,
			FilesUpdated:   s.FilesUpdated,
			EntriesRemoved: s.EntriesRemoved,
			Skipped:        s.Skipped,
			TypeMismatches: s.TypeMismatches,
			BytesCopied:    s.BytesCopied,
		},
		Errors: errors,
	})
}

// Error emits an error event
func (f *JSONFormatter) Error(err error) error {
	return f.emit("error", "", JSONErrorData{Error: err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) emit(eventType, passID string, data any) error {
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now(),
		Type:      eventType,
		PassID:    passID,
		Data:      data,
	})
}

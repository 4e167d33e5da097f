package models

import (
	"time"
)

// PassReport represents the results of one mirror pass
type PassReport struct {
	PassID     string
	SourcePath string
	DestPath   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Every action attempted during the pass, in order
	Records []ActionRecord

	// Level failures (unlistable directories)
	Errors []PassError

	// Overall status
	Status PassStatus
}

// NewPassReport creates an empty report for a pass that starts now
func NewPassReport(passID string, pair DirectoryPair) *PassReport {
	return &PassReport{
		PassID:     passID,
		SourcePath: pair.Source,
		DestPath:   pair.Dest,
		StartTime:  time.Now(),
		Status:     StatusSuccess,
	}
}

// Statistics holds pass metrics
type Statistics struct {
	LevelsCompared int
	LevelsFailed   int
	FilesCompared  int // common files checked byte by byte

	FilesCreated   int
	DirsCreated    int
	FilesUpdated   int
	EntriesRemoved int
	Skipped        int
	TypeMismatches int

	BytesCopied int64
}

// Changes returns the number of applied actions
func (s *Statistics) Changes() int {
	return s.FilesCreated + s.DirsCreated + s.FilesUpdated + s.EntriesRemoved
}

// PassStatus represents the overall result of a pass
type PassStatus string

const (
	// StatusSuccess indicates every action was applied
	StatusSuccess PassStatus = "success"
	// StatusPartial indicates some entries or levels were skipped
	StatusPartial PassStatus = "partial"
	// StatusCancelled indicates the pass was interrupted
	StatusCancelled PassStatus = "cancelled"
)

// PassError represents a level that could not be mirrored this pass
type PassError struct {
	Path      string
	Error     string
	Timestamp time.Time
}

// Add appends a record and updates the statistics
func (r *PassReport) Add(rec ActionRecord) {
	r.Records = append(r.Records, rec)

	// Planned actions count as changes so a dry run reports what a pass would do
	if rec.Outcome == OutcomeSkipped {
		r.Stats.Skipped++
		r.markPartial()
		return
	}

	switch rec.Action {
	case ActionUpdate:
		r.Stats.FilesUpdated++
		r.Stats.BytesCopied += rec.Bytes
	case ActionRemove:
		r.Stats.EntriesRemoved++
	case ActionCreate:
		if rec.IsDir {
			r.Stats.DirsCreated++
		} else {
			r.Stats.FilesCreated++
			r.Stats.BytesCopied += rec.Bytes
		}
	}
}

// AddError records a failed level
func (r *PassReport) AddError(path string, err error) {
	r.Errors = append(r.Errors, PassError{
		Path:      path,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
	r.Stats.LevelsFailed++
	r.markPartial()
}

// Cancel marks the pass as interrupted
func (r *PassReport) Cancel() {
	r.Status = StatusCancelled
}

// Finish stamps the end time
func (r *PassReport) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Count returns how many records match the action and outcome
func (r *PassReport) Count(action Action, outcome Outcome) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Action == action && rec.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *PassReport) markPartial() {
	if r.Status == StatusSuccess {
		r.Status = StatusPartial
	}
}

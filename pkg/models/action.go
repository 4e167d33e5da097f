package models

import (
	"fmt"
	"strings"
	"time"
)

// Action represents what was done to a destination entry
type Action string

const (
	// ActionUpdate overwrites an existing destination file
	ActionUpdate Action = "update"
	// ActionRemove deletes a destination-only entry
	ActionRemove Action = "remove"
	// ActionCreate copies a source-only entry into the destination
	ActionCreate Action = "create"
)

// Label returns the upper-case form used in the action log
func (a Action) Label() string {
	return strings.ToUpper(string(a))
}

// Outcome represents the result of a single action attempt
type Outcome string

const (
	// OutcomeApplied indicates the action was carried out
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped indicates the action failed and will be retried next pass
	OutcomeSkipped Outcome = "skipped"
	// OutcomePlanned indicates a dry run left the action undone
	OutcomePlanned Outcome = "planned"
)

// ActionRecord is one entry of the action log
type ActionRecord struct {
	PassID     string
	Action     Action
	SourcePath string // empty for removals
	DestPath   string
	IsDir      bool
	Outcome    Outcome
	Reason     string // set when skipped
	Bytes      int64
	Timestamp  time.Time
}

// Applied reports whether the action succeeded
func (r *ActionRecord) Applied() bool {
	return r.Outcome == OutcomeApplied
}

// String renders the record as an action log line
func (r *ActionRecord) String() string {
	var line string
	if r.Action == ActionRemove {
		line = fmt.Sprintf("%s: '%s'", r.Action.Label(), r.DestPath)
	} else {
		line = fmt.Sprintf("%s: '%s' --> '%s'", r.Action.Label(), r.SourcePath, r.DestPath)
	}

	switch r.Outcome {
	case OutcomeSkipped:
		return fmt.Sprintf("SKIP %s: %s", line, r.Reason)
	case OutcomePlanned:
		return "PLAN " + line
	}
	return line
}

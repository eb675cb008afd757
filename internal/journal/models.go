package journal

import "time"

// Actions recorded in the journal.
const (
	ActionSave    = "save"
	ActionRestore = "restore"
)

// Entry is one recorded milestone operation. The journal tracks what
// milepost did, not the milestones themselves; milestone state lives in
// the git repository.
type Entry struct {
	ID           int64      `json:"id"`
	Action       string     `json:"action"` // save, restore
	Branch       string     `json:"branch"`
	CommitHash   *string    `json:"commit_hash,omitempty"`
	Note         *string    `json:"note,omitempty"`
	Status       string     `json:"status"` // success, failed
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

package milestone

// Record is one milestone synthesized from the git log. Records are
// transient: they are rebuilt on every listing and never persisted by
// milepost itself, the durable state is the commit object in git.
type Record struct {
	// Hash is the full commit identifier.
	Hash string `json:"hash"`

	// Message is the user-facing note, with the milestone prefix
	// already stripped.
	Message string `json:"message"`

	// Date is the calendar date of creation, YYYY-MM-DD.
	Date string `json:"date"`

	// Time is the time of day of creation, HH:MM:SS, taken from the
	// same timestamp as Date.
	Time string `json:"time"`
}

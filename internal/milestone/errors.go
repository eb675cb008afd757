package milestone

import "errors"

// Precondition failures. These abort an operation before any side
// effect and are reported to the user directly.
var (
	// ErrNotRepository means the configured path is not inside a git
	// work tree.
	ErrNotRepository = errors.New("not a git repository")

	// ErrProtectedBranch means the current branch is in the protected
	// set and rejects reversion.
	ErrProtectedBranch = errors.New("branch is protected from reversion")

	// ErrUnknownMilestone means the requested hash does not resolve to
	// a commit in the repository.
	ErrUnknownMilestone = errors.New("milestone commit not found")
)

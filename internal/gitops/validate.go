package gitops

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	branchPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)
	hashPattern   = regexp.MustCompile(`^[0-9a-fA-F]{4,40}$`)
)

// ValidateBranchName rejects branch names that could be interpreted as
// options or smuggle shell syntax into a git invocation.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("branch name cannot start with '-'")
	}
	if !branchPattern.MatchString(branch) {
		return fmt.Errorf("branch name contains invalid characters")
	}
	return nil
}

// ValidateCommitHash accepts full or abbreviated hex object names.
func ValidateCommitHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("commit hash cannot be empty")
	}
	if !hashPattern.MatchString(hash) {
		return fmt.Errorf("invalid commit hash: %q", hash)
	}
	return nil
}

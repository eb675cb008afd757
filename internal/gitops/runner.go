package gitops

import (
	"context"
	"time"

	"milepost/pkg/cmdutil"
)

// DefaultCommandTimeout bounds a single git invocation. Network
// operations (push) get their own, longer bound.
const (
	DefaultCommandTimeout = 30 * time.Second
	PushTimeout           = 120 * time.Second
)

// Runner executes one git command in the repository and returns its
// stdout. Implementations wrap the real binary; tests substitute a
// scripted fake.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) (string, error)
}

// execRunner invokes the git binary through cmdutil.
type execRunner struct {
	dir string
}

// NewRunner returns a Runner executing git in the given directory.
func NewRunner(dir string) Runner {
	return &execRunner{dir: dir}
}

func (r *execRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	parts := append([]string{"git"}, args...)
	result, err := cmdutil.Run(ctx, cmdutil.Options{Dir: r.dir, Timeout: timeout}, parts)
	if err != nil {
		return string(result.Stdout), wrapGitError(args, result, err)
	}
	return string(result.Stdout), nil
}

// Package watcher detects out-of-band branch switches (checkouts done
// on the command line while milepost is running) by polling the
// repository HEAD file's modification time.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// BranchFunc reads the current branch name.
type BranchFunc func(ctx context.Context) (string, error)

// ChangeFunc is invoked after the cached branch was swapped. It runs on
// the watcher goroutine; long work should be dispatched elsewhere.
type ChangeFunc func(oldBranch, newBranch string)

// Watcher owns the last-known branch name. The polling goroutine is the
// only writer; the value changes exclusively through checkAndSwap.
type Watcher struct {
	headPath string
	interval time.Duration
	branchFn BranchFunc
	onChange ChangeFunc
	logger   *slog.Logger

	lastMod    time.Time
	lastBranch string
}

// New creates a watcher polling headPath every interval.
func New(headPath string, interval time.Duration, branchFn BranchFunc, onChange ChangeFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		headPath: headPath,
		interval: interval,
		branchFn: branchFn,
		onChange: onChange,
		logger:   logger,
	}
}

// Run polls until the context is canceled. The initial branch is read
// before the first tick so the first poll doesn't fire a spurious
// change event.
func (w *Watcher) Run(ctx context.Context) error {
	if branch, err := w.branchFn(ctx); err == nil {
		w.lastBranch = branch
	} else {
		w.logger.Warn("failed to read initial branch", "error", err)
	}
	if info, err := os.Stat(w.headPath); err == nil {
		w.lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	info, err := os.Stat(w.headPath)
	if err != nil {
		w.logger.Warn("failed to stat HEAD file", "path", w.headPath, "error", err)
		return
	}

	modTime := info.ModTime()
	if modTime.Equal(w.lastMod) {
		return
	}
	w.lastMod = modTime

	branch, err := w.branchFn(ctx)
	if err != nil {
		w.logger.Warn("failed to read branch after HEAD change", "error", err)
		return
	}

	if old, changed := w.checkAndSwap(branch); changed {
		w.logger.Info("branch changed", "from", old, "to", branch)
		w.onChange(old, branch)
	}
}

// checkAndSwap compares the cached branch with the observed one and
// swaps only on a real change, returning the previous value.
func (w *Watcher) checkAndSwap(branch string) (string, bool) {
	if branch == "" || branch == w.lastBranch {
		return w.lastBranch, false
	}
	old := w.lastBranch
	w.lastBranch = branch
	return old, true
}

package milestone

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"milepost/internal/config"
	"milepost/internal/journal"
	"milepost/pkg/cmdutil"
)

// HookTimeout bounds one post-save hook command.
const HookTimeout = 120 * time.Second

// GitRepo is the subset of git operations the service needs. Satisfied
// by *gitops.Repo; tests substitute a fake.
type GitRepo interface {
	Dir() string
	IsRepository(ctx context.Context) bool
	CurrentBranch(ctx context.Context) (string, error)
	StageAll(ctx context.Context) error
	UnstageMatching(ctx context.Context, pattern *regexp.Regexp) (int, error)
	Commit(ctx context.Context, subject string) (string, error)
	Push(ctx context.Context, remote, branch string) error
	ForcePush(ctx context.Context, remote, branch string) error
	CommitExists(ctx context.Context, hash string) bool
	ResetHard(ctx context.Context, hash string) error
	CleanUntracked(ctx context.Context) error
	MilestoneLog(ctx context.Context, limit int) (string, error)
}

// OperationLog records completed operations. Satisfied by
// *journal.Journal; nil disables journaling.
type OperationLog interface {
	Record(ctx context.Context, entry *journal.Entry) (int64, error)
}

// Service implements the milestone operations: save, list, restore.
// All git work is sequential; the Guard rejects overlapping mutations.
type Service struct {
	repo   GitRepo
	cfg    *config.Config
	log    OperationLog
	logger *slog.Logger
	guard  Guard
}

// NewService wires a Service. log may be nil.
func NewService(repo GitRepo, cfg *config.Config, log OperationLog, logger *slog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, logger: logger}
}

// Guard exposes the in-flight guard for callers that trigger
// operations concurrently (the status server).
func (s *Service) Guard() *Guard {
	return &s.guard
}

// SaveResult describes a completed save.
type SaveResult struct {
	Hash     string `json:"hash"`
	Branch   string `json:"branch"`
	Subject  string `json:"subject"`
	Pushed   bool   `json:"pushed"`
	Unstaged int    `json:"unstaged_ignored_files"`
}

// Save creates a milestone commit from the current working tree: stage
// everything, drop ignored paths from the index, commit (empty
// changesets allowed), then optionally push with one upstream-set
// fallback retry.
func (s *Service) Save(ctx context.Context, note string) (*SaveResult, error) {
	if !s.repo.IsRepository(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, s.repo.Dir())
	}

	branch, err := s.repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.StageAll(ctx); err != nil {
		return nil, s.journalSave(ctx, branch, note, "", err)
	}

	unstaged, err := s.repo.UnstageMatching(ctx, s.cfg.IgnoredPattern)
	if err != nil {
		return nil, s.journalSave(ctx, branch, note, "", err)
	}
	if unstaged > 0 {
		s.logger.Info("unstaged ignored files", "count", unstaged)
	}

	subject := Encode(note)
	hash, err := s.repo.Commit(ctx, subject)
	if err != nil {
		return nil, s.journalSave(ctx, branch, note, "", err)
	}

	result := &SaveResult{Hash: hash, Branch: branch, Subject: subject, Unstaged: unstaged}

	if s.cfg.PushOnSave {
		if err := s.repo.Push(ctx, s.cfg.Remote, branch); err != nil {
			// The commit exists locally; report the push failure with
			// the hash so the user can retry by hand.
			return result, s.journalSave(ctx, branch, note, hash,
				fmt.Errorf("milestone %s created but push failed: %w", hash, err))
		}
		result.Pushed = true
	}

	s.journalSave(ctx, branch, note, hash, nil)
	s.runPostSaveHooks(ctx)

	return result, nil
}

// List returns the milestones visible on the current branch, newest
// first. Any failure degrades to an empty slice and is logged only:
// callers cannot distinguish "no milestones" from "listing failed" at
// this layer.
func (s *Service) List(ctx context.Context) []Record {
	raw, err := s.repo.MilestoneLog(ctx, s.cfg.ListLimit)
	if err != nil {
		s.logger.Warn("milestone listing failed", "error", err)
		return []Record{}
	}
	return Decode(raw)
}

// Restore moves the current branch back to a milestone: hard reset,
// remove untracked files, optionally force-push. Protected branches and
// unknown hashes abort before any side effect.
func (s *Service) Restore(ctx context.Context, hash string) error {
	if !s.repo.IsRepository(ctx) {
		return fmt.Errorf("%w: %s", ErrNotRepository, s.repo.Dir())
	}

	branch, err := s.repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	if s.cfg.IsProtectedBranch(branch) {
		return fmt.Errorf("%w: %s", ErrProtectedBranch, branch)
	}

	if !s.repo.CommitExists(ctx, hash) {
		return fmt.Errorf("%w: %s", ErrUnknownMilestone, hash)
	}

	if err := s.repo.ResetHard(ctx, hash); err != nil {
		return s.journalRestore(ctx, branch, hash, err)
	}
	if err := s.repo.CleanUntracked(ctx); err != nil {
		return s.journalRestore(ctx, branch, hash, err)
	}

	if s.cfg.ForcePushOnRestore {
		if err := s.repo.ForcePush(ctx, s.cfg.Remote, branch); err != nil {
			return s.journalRestore(ctx, branch, hash,
				fmt.Errorf("branch reset to %s but force push failed: %w", hash, err))
		}
	}

	s.journalRestore(ctx, branch, hash, nil)
	s.logger.Info("restored milestone", "branch", branch, "hash", hash)
	return nil
}

// journalSave records a save outcome and passes the error through.
func (s *Service) journalSave(ctx context.Context, branch, note, hash string, opErr error) error {
	s.record(ctx, &journal.Entry{
		Action:       journal.ActionSave,
		Branch:       branch,
		CommitHash:   optional(hash),
		Note:         optional(note),
		Status:       statusOf(opErr),
		ErrorMessage: errMessage(opErr),
	})
	return opErr
}

func (s *Service) journalRestore(ctx context.Context, branch, hash string, opErr error) error {
	s.record(ctx, &journal.Entry{
		Action:       journal.ActionRestore,
		Branch:       branch,
		CommitHash:   optional(hash),
		Status:       statusOf(opErr),
		ErrorMessage: errMessage(opErr),
	})
	return opErr
}

func (s *Service) record(ctx context.Context, entry *journal.Entry) {
	if s.log == nil {
		return
	}
	if _, err := s.log.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record journal entry", "error", err, "action", entry.Action)
	}
}

// runPostSaveHooks executes configured post_save commands in the
// repository directory. Hook failures are logged, never fatal: the
// milestone already exists.
func (s *Service) runPostSaveHooks(ctx context.Context) {
	for i, raw := range s.cfg.PostSave {
		parts, err := cmdutil.ParseCommandList(raw)
		if err != nil {
			s.logger.Error("invalid post_save hook", "index", i, "error", err)
			continue
		}

		s.logger.Info("running post_save hook", "command", cmdutil.FormatCommand(parts))
		result, err := cmdutil.Run(ctx, cmdutil.Options{
			Dir:     s.repo.Dir(),
			Timeout: HookTimeout,
		}, parts)
		if err != nil {
			s.logger.Error("post_save hook failed",
				"command", cmdutil.FormatCommand(parts),
				"exit_code", result.ExitCode,
				"error", err)
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func statusOf(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func errMessage(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}

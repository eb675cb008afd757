package gitops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"
)

// fakeRunner scripts git output per subcommand and records every
// invocation so tests can assert command sequences.
type fakeRunner struct {
	outputs map[string]string // keyed by joined args prefix
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, args ...string) (string, error) {
	call := strings.Join(args, " ")
	f.calls = append(f.calls, call)

	for prefix, err := range f.errs {
		if strings.HasPrefix(call, prefix) {
			return f.outputs[prefix], err
		}
	}
	for prefix, out := range f.outputs {
		if strings.HasPrefix(call, prefix) {
			return out, nil
		}
	}
	return "", nil
}

func (f *fakeRunner) calledWith(prefix string) bool {
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

func testRepo(runner Runner) *Repo {
	return NewRepoWithRunner("/tmp/repo", runner, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIsRepository(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["rev-parse --is-inside-work-tree"] = "true\n"
	if !testRepo(runner).IsRepository(context.Background()) {
		t.Error("Expected IsRepository to be true")
	}

	runner = newFakeRunner()
	runner.errs["rev-parse --is-inside-work-tree"] = errors.New("not a git repository")
	if testRepo(runner).IsRepository(context.Background()) {
		t.Error("Expected IsRepository to be false on error")
	}
}

func TestCurrentBranch(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["branch --show-current"] = "feature/login\n"

	branch, err := testRepo(runner).CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if branch != "feature/login" {
		t.Errorf("Expected feature/login, got %q", branch)
	}
}

func TestUpstream(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["rev-parse --abbrev-ref --symbolic-full-name @{u}"] = "origin/main\n"

	upstream, ok := testRepo(runner).Upstream(context.Background())
	if !ok || upstream != "origin/main" {
		t.Errorf("Expected origin/main, got %q ok=%v", upstream, ok)
	}

	runner = newFakeRunner()
	runner.errs["rev-parse --abbrev-ref"] = errors.New("no upstream configured")
	if _, ok := testRepo(runner).Upstream(context.Background()); ok {
		t.Error("Expected ok=false without upstream")
	}
}

func TestUnstageMatching(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["diff --cached --name-only"] = ".env\nsrc/main.go\nsecrets/key.pem\n"

	pattern := regexp.MustCompile(`\.env$|\.pem$`)
	n, err := testRepo(runner).UnstageMatching(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 unstaged files, got %d", n)
	}
	if !runner.calledWith("reset -- .env secrets/key.pem") {
		t.Errorf("Expected reset of matched paths, calls: %v", runner.calls)
	}
}

func TestUnstageMatching_NoMatches(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["diff --cached --name-only"] = "src/main.go\n"

	n, err := testRepo(runner).UnstageMatching(context.Background(), regexp.MustCompile(`\.env$`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 unstaged files, got %d", n)
	}
	if runner.calledWith("reset --") {
		t.Error("Reset must not run when nothing matches")
	}
}

func TestUnstageMatching_NilPattern(t *testing.T) {
	runner := newFakeRunner()
	n, err := testRepo(runner).UnstageMatching(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("Expected no-op for nil pattern, got n=%d err=%v", n, err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("Expected no git calls, got %v", runner.calls)
	}
}

func TestCommit_AllowsEmptyAndReturnsHash(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["rev-parse HEAD"] = "abc123\n"

	hash, err := testRepo(runner).Commit(context.Background(), "Milestone: wip")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("Expected abc123, got %q", hash)
	}
	if !runner.calledWith("commit --allow-empty -m Milestone: wip") {
		t.Errorf("Expected allow-empty commit, calls: %v", runner.calls)
	}
}

func TestPush_FallbackSetsUpstream(t *testing.T) {
	// Bare "push" fails, "push --set-upstream" succeeds.
	scripted := &scriptedRunner{
		responses: map[string]error{
			"push":                               errors.New("fatal: the current branch has no upstream"),
			"push --set-upstream origin feature": nil,
		},
	}

	err := testRepo(scripted).Push(context.Background(), "origin", "feature")
	if err != nil {
		t.Fatalf("Expected fallback push to succeed, got %v", err)
	}
	if len(scripted.calls) != 2 {
		t.Fatalf("Expected 2 push attempts, got %v", scripted.calls)
	}
	if scripted.calls[1] != "push --set-upstream origin feature" {
		t.Errorf("Expected upstream fallback, got %q", scripted.calls[1])
	}
}

func TestPush_FallbackFailureReported(t *testing.T) {
	scripted := &scriptedRunner{
		responses: map[string]error{
			"push":                               errors.New("connection refused"),
			"push --set-upstream origin feature": errors.New("connection refused"),
		},
	}

	err := testRepo(scripted).Push(context.Background(), "origin", "feature")
	if err == nil {
		t.Fatal("Expected error after fallback failure")
	}
	if !strings.Contains(err.Error(), "upstream fallback") {
		t.Errorf("Expected wrapped fallback error, got %v", err)
	}
}

func TestPush_RejectsBadBranchName(t *testing.T) {
	runner := newFakeRunner()
	err := testRepo(runner).Push(context.Background(), "origin", "--force-evil")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if len(runner.calls) != 0 {
		t.Errorf("Expected no git calls for invalid branch, got %v", runner.calls)
	}
}

func TestResetHard_RejectsBadHash(t *testing.T) {
	runner := newFakeRunner()
	if err := testRepo(runner).ResetHard(context.Background(), "not-a-hash"); err == nil {
		t.Fatal("Expected validation error")
	}
	if len(runner.calls) != 0 {
		t.Errorf("Expected no git calls for invalid hash, got %v", runner.calls)
	}
}

func TestMilestoneLog_UpstreamScoped(t *testing.T) {
	scripted := &scriptedRunner{
		responses: map[string]error{},
		outputs: map[string]string{
			"rev-parse --abbrev-ref --symbolic-full-name @{u}": "origin/main\n",
		},
	}

	_, err := testRepo(scripted).MilestoneLog(context.Background(), 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	logCall := scripted.calls[len(scripted.calls)-1]
	if !strings.Contains(logCall, "origin/main..HEAD") {
		t.Errorf("Expected upstream-scoped range, got %q", logCall)
	}
	if strings.Contains(logCall, "-n 50") {
		t.Errorf("Limit must not apply with an upstream, got %q", logCall)
	}
	if !strings.Contains(logCall, "--grep=^Milestone") {
		t.Errorf("Expected anchored grep filter, got %q", logCall)
	}
}

func TestMilestoneLog_LimitWithoutUpstream(t *testing.T) {
	scripted := &scriptedRunner{
		responses: map[string]error{
			"rev-parse --abbrev-ref --symbolic-full-name @{u}": errors.New("no upstream"),
		},
	}

	_, err := testRepo(scripted).MilestoneLog(context.Background(), 25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	logCall := scripted.calls[len(scripted.calls)-1]
	if !strings.Contains(logCall, "-n 25") {
		t.Errorf("Expected count limit without upstream, got %q", logCall)
	}
	if strings.Contains(logCall, "..HEAD") {
		t.Errorf("Range must not apply without upstream, got %q", logCall)
	}
}

// scriptedRunner matches full argument strings, unlike fakeRunner's
// prefix matching, for tests that need exact call discrimination.
type scriptedRunner struct {
	responses map[string]error
	outputs   map[string]string
	calls     []string
}

func (s *scriptedRunner) Run(_ context.Context, _ time.Duration, args ...string) (string, error) {
	call := strings.Join(args, " ")
	s.calls = append(s.calls, call)

	out := ""
	if s.outputs != nil {
		out = s.outputs[call]
	}
	if err, ok := s.responses[call]; ok && err != nil {
		return out, fmt.Errorf("git %s: %w", args[0], err)
	}
	if _, ok := s.responses[call]; ok {
		return out, nil
	}
	// Unscripted calls succeed with their scripted output, if any.
	return out, nil
}

func TestValidateBranchName(t *testing.T) {
	valid := []string{"main", "feature/login", "release-1.2", "hotfix_x"}
	for _, b := range valid {
		if err := ValidateBranchName(b); err != nil {
			t.Errorf("Expected %q to be valid: %v", b, err)
		}
	}

	invalid := []string{"", "-rf", "branch name", "a;b", "x`y`"}
	for _, b := range invalid {
		if err := ValidateBranchName(b); err == nil {
			t.Errorf("Expected %q to be rejected", b)
		}
	}
}

func TestValidateCommitHash(t *testing.T) {
	if err := ValidateCommitHash("a1b2c3d4"); err != nil {
		t.Errorf("Expected abbreviated hash to be valid: %v", err)
	}
	if err := ValidateCommitHash(strings.Repeat("ab", 20)); err != nil {
		t.Errorf("Expected full hash to be valid: %v", err)
	}
	for _, h := range []string{"", "xyz", "abc", "HEAD", "--hard"} {
		if err := ValidateCommitHash(h); err == nil {
			t.Errorf("Expected %q to be rejected", h)
		}
	}
}

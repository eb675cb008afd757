// Package remote inspects the GitHub copy of the repository. It is an
// optional feature: without a token every query reports unavailable.
package remote

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"milepost/internal/config"
)

// BranchStatus describes how the local branch relates to its GitHub
// counterpart.
type BranchStatus struct {
	Branch    string `json:"branch"`
	Exists    bool   `json:"exists"`
	AheadBy   int    `json:"ahead_by"`
	BehindBy  int    `json:"behind_by"`
	DefaultAt string `json:"default_branch,omitempty"`
}

// Inspector queries the GitHub API for branch state.
type Inspector struct {
	client *github.Client
	owner  string
	repo   string
}

// httpsRemotePattern matches https://github.com/owner/repo(.git);
// sshRemotePattern matches git@github.com:owner/repo(.git).
var (
	httpsRemotePattern = regexp.MustCompile(`^https://github\.com/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+?)(?:\.git)?$`)
	sshRemotePattern   = regexp.MustCompile(`^git@github\.com:([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+?)(?:\.git)?$`)
)

// ParseRemoteURL extracts owner and repository name from a GitHub
// remote URL in https or ssh form.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSpace(url)
	for _, pattern := range []*regexp.Regexp{httpsRemotePattern, sshRemotePattern} {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("not a recognized GitHub remote URL: %q", url)
}

// NewInspector builds an Inspector from configuration. Returns nil
// (feature unavailable) when no token is configured or the repository
// cannot be identified.
func NewInspector(ctx context.Context, cfg config.GitHubConfig, remoteURL string) *Inspector {
	if cfg.Token == "" {
		return nil
	}

	owner, repo := cfg.Owner, cfg.Repo
	if owner == "" || repo == "" {
		var err error
		owner, repo, err = ParseRemoteURL(remoteURL)
		if err != nil {
			return nil
		}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(ctx, ts)

	return &Inspector{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// BranchStatus compares the local branch head against its GitHub
// counterpart and reports ahead/behind counts.
func (i *Inspector) BranchStatus(ctx context.Context, branch, localHead string) (*BranchStatus, error) {
	status := &BranchStatus{Branch: branch}

	repoInfo, _, err := i.client.Repositories.Get(ctx, i.owner, i.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to query repository: %w", err)
	}
	status.DefaultAt = repoInfo.GetDefaultBranch()

	_, resp, err := i.client.Repositories.GetBranch(ctx, i.owner, i.repo, branch, 1)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			// Branch never pushed; everything local is ahead.
			return status, nil
		}
		return nil, fmt.Errorf("failed to query branch %s: %w", branch, err)
	}
	status.Exists = true

	if localHead == "" {
		return status, nil
	}

	comparison, _, err := i.client.Repositories.CompareCommits(
		ctx, i.owner, i.repo, branch, localHead, nil)
	if err != nil {
		// The local head may not exist remotely yet; report existence
		// only rather than failing the whole status call.
		return status, nil
	}
	status.AheadBy = comparison.GetAheadBy()
	status.BehindBy = comparison.GetBehindBy()

	return status, nil
}

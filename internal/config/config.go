// Package config loads and validates the milepost YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRemote       = "origin"
	DefaultListLimit    = 50
	DefaultPollInterval = 5
)

// baseBranches are always protected from reversion, regardless of
// configuration. Matching is case-insensitive.
var baseBranches = []string{"main", "master"}

// FileConfig mirrors the YAML document on disk.
type FileConfig struct {
	// Repo is the working tree path. Empty means the current directory.
	Repo string `yaml:"repo"`

	// Remote is the push target. Defaults to "origin".
	Remote string `yaml:"remote"`

	// PushOnSave publishes the branch after each milestone commit.
	PushOnSave bool `yaml:"push_on_save"`

	// ForcePushOnRestore overwrites the remote branch after a revert.
	ForcePushOnRestore bool `yaml:"force_push_on_restore"`

	// AdditionalBaseBranches is a semicolon-separated list appended to
	// the built-in protected set.
	AdditionalBaseBranches string `yaml:"additional_base_branches"`

	// IgnoredFilesPattern is a regular expression; staged paths
	// matching it are unstaged before each milestone commit.
	IgnoredFilesPattern string `yaml:"ignored_files_pattern"`

	// ListLimit caps full-history milestone queries when the branch
	// has no upstream. Zero or unset means the default limit.
	ListLimit int `yaml:"list_limit"`

	// PollInterval is the branch-watch polling period in seconds.
	// Zero or unset means the default interval.
	PollInterval int `yaml:"poll_interval"`

	// PostSave commands run after a successful milestone commit. Each
	// entry is a shell-quoted string or an explicit argument list.
	PostSave []interface{} `yaml:"post_save"`

	// Server holds status-server settings.
	Server ServerConfig `yaml:"server"`

	// GitHub enables optional remote branch inspection.
	GitHub GitHubConfig `yaml:"github"`
}

// ServerConfig configures the local status server.
type ServerConfig struct {
	// Token, when set, is required in the X-Milepost-Token header for
	// mutating requests.
	Token string `yaml:"token"`
}

// GitHubConfig configures remote branch inspection.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Config is the validated runtime configuration.
type Config struct {
	Repo               string
	Remote             string
	PushOnSave         bool
	ForcePushOnRestore bool
	ProtectedBranches  []string
	IgnoredPattern     *regexp.Regexp
	ListLimit          int
	PollInterval       int
	PostSave           []interface{}
	Server             ServerConfig
	GitHub             GitHubConfig
}

// Load reads, parses, and validates a config file. A missing path is
// not an error upstream; callers decide whether the file is required.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return fromFileConfig(&fc)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, _ := fromFileConfig(&FileConfig{})
	return cfg
}

func fromFileConfig(fc *FileConfig) (*Config, error) {
	repo := fc.Repo
	if repo == "" {
		repo = "."
	}
	absRepo, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repo path %q: %w", repo, err)
	}

	remote := fc.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	listLimit := fc.ListLimit
	if listLimit == 0 {
		listLimit = DefaultListLimit
	}
	if listLimit < 0 {
		return nil, fmt.Errorf("list_limit cannot be negative, got %d", fc.ListLimit)
	}

	pollInterval := fc.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}
	if pollInterval < 0 {
		return nil, fmt.Errorf("poll_interval cannot be negative, got %d", fc.PollInterval)
	}

	var ignored *regexp.Regexp
	if fc.IgnoredFilesPattern != "" {
		ignored, err = regexp.Compile(fc.IgnoredFilesPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignored_files_pattern: %w", err)
		}
	}

	protected := append([]string{}, baseBranches...)
	protected = append(protected, ParseBranchList(fc.AdditionalBaseBranches)...)

	return &Config{
		Repo:               absRepo,
		Remote:             remote,
		PushOnSave:         fc.PushOnSave,
		ForcePushOnRestore: fc.ForcePushOnRestore,
		ProtectedBranches:  protected,
		IgnoredPattern:     ignored,
		ListLimit:          listLimit,
		PollInterval:       pollInterval,
		PostSave:           fc.PostSave,
		Server:             fc.Server,
		GitHub:             fc.GitHub,
	}, nil
}

// ParseBranchList splits a semicolon-separated branch list, trimming
// whitespace and dropping empty segments.
func ParseBranchList(s string) []string {
	var branches []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			branches = append(branches, part)
		}
	}
	return branches
}

// IsProtectedBranch reports whether the branch rejects reversion.
// Matching is case-insensitive so "Main" is protected by an entry
// "main".
func (c *Config) IsProtectedBranch(branch string) bool {
	for _, p := range c.ProtectedBranches {
		if strings.EqualFold(p, branch) {
			return true
		}
	}
	return false
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "milepost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "repo: .\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Remote != "origin" {
		t.Errorf("Expected default remote origin, got %q", cfg.Remote)
	}
	if cfg.ListLimit != DefaultListLimit {
		t.Errorf("Expected default list limit %d, got %d", DefaultListLimit, cfg.ListLimit)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default poll interval %d, got %d", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.IgnoredPattern != nil {
		t.Error("Expected no ignored pattern by default")
	}
	if !filepath.IsAbs(cfg.Repo) {
		t.Errorf("Expected absolute repo path, got %q", cfg.Repo)
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	_, err := Load(writeConfig(t, "ignored_files_pattern: '['\n"))
	if err == nil {
		t.Fatal("Expected error for invalid regex")
	}
}

func TestLoad_IgnoredPatternMatches(t *testing.T) {
	cfg, err := Load(writeConfig(t, `ignored_files_pattern: '.*\.env$'`+"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IgnoredPattern.MatchString("config/.env") {
		t.Error("Expected pattern to match config/.env")
	}
	if cfg.IgnoredPattern.MatchString("main.go") {
		t.Error("Expected pattern not to match main.go")
	}
}

func TestParseBranchList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"trailing separator", "develop;staging;", []string{"develop", "staging"}},
		{"whitespace trimmed", " develop ; staging ", []string{"develop", "staging"}},
		{"empty", "", nil},
		{"only separators", ";;;", nil},
		{"single", "release", []string{"release"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBranchList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Position %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestIsProtectedBranch_CaseInsensitive(t *testing.T) {
	cfg, err := Load(writeConfig(t, `additional_base_branches: "develop;staging;"`+"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	protected := []string{"main", "Main", "MASTER", "develop", "Staging"}
	for _, b := range protected {
		if !cfg.IsProtectedBranch(b) {
			t.Errorf("Expected %q to be protected", b)
		}
	}

	unprotected := []string{"feature/login", "mainline", "dev"}
	for _, b := range unprotected {
		if cfg.IsProtectedBranch(b) {
			t.Errorf("Expected %q not to be protected", b)
		}
	}
}

func TestLoad_ZeroMeansDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, "list_limit: 0\npoll_interval: 0\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListLimit != DefaultListLimit {
		t.Errorf("Expected default list limit for 0, got %d", cfg.ListLimit)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default poll interval for 0, got %d", cfg.PollInterval)
	}
}

func TestLoad_NegativeValuesRejected(t *testing.T) {
	if _, err := Load(writeConfig(t, "list_limit: -1\n")); err == nil {
		t.Error("Expected error for negative list_limit")
	}
	if _, err := Load(writeConfig(t, "poll_interval: -5\n")); err == nil {
		t.Error("Expected error for negative poll_interval")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg == nil {
		t.Fatal("Expected non-nil default config")
	}
	if !cfg.IsProtectedBranch("master") {
		t.Error("Expected built-in protected set in default config")
	}
}

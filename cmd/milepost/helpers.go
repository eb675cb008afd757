package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"milepost/internal/config"
	"milepost/internal/gitops"
	"milepost/internal/journal"
	"milepost/internal/milestone"
	"milepost/pkg/fileutil"
)

const configFileName = "milepost.yaml"

// loadConfig resolves and loads the configuration. An explicit path is
// required to exist; otherwise default search locations are tried and a
// built-in default configuration is used when nothing is found.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	found := fileutil.SearchPathsOptional(fileutil.DefaultConfigPaths(configFileName))
	if found == "" {
		return config.Default(), nil
	}
	return config.Load(found)
}

// newCLILogger returns a text logger on stderr for interactive
// commands. Warnings and up unless verbose.
func newCLILogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openJournal opens the operation journal, degrading to nil (journaling
// disabled) when it cannot be opened. CLI operations should not fail
// because the audit log is unavailable.
func openJournal(dbPath string, logger *slog.Logger) *journal.Journal {
	jnl, err := journal.Open(dbPath)
	if err != nil {
		logger.Warn("journal unavailable", "db", dbPath, "error", err)
		return nil
	}
	return jnl
}

// buildService wires the milestone service for a CLI command.
func buildService(cfg *config.Config, jnl *journal.Journal, logger *slog.Logger) (*milestone.Service, *gitops.Repo) {
	repo := gitops.NewRepo(cfg.Repo, logger)

	var opLog milestone.OperationLog
	if jnl != nil {
		opLog = jnl
	}
	return milestone.NewService(repo, cfg, opLog, logger), repo
}

// confirm asks a yes/no question on the terminal.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"milepost/internal/server"

	"github.com/spf13/cobra"
)

var (
	serveConfigFile string
	serveLogFile    string
	serveDBPath     string
	serveHost       string
	servePort       int
	serveTestMode   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local status server",
	Long: `Start the HTTP status server for the repository.

It serves the milestone list, repository health, and the operation
journal as JSON, and accepts milestone creation requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	serveCmd.Flags().StringVar(&serveLogFile, "log", getEnvOrDefault("MILEPOST_LOG_FILE", "./milepost.log"), "Path to log file")
	serveCmd.Flags().StringVar(&serveDBPath, "db", getEnvOrDefault("MILEPOST_DB_PATH", "./milepost.db"), "Path to the operation journal database")
	serveCmd.Flags().StringVar(&serveHost, "host", getEnvOrDefault("MILEPOST_HOST", "127.0.0.1"), "Host to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", getEnvOrDefaultInt("MILEPOST_PORT", 4710), "Port to listen on")
	serveCmd.Flags().BoolVar(&serveTestMode, "test-mode", false, "Disable rate limiting and journaling")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logFileHandle, err := setupLogging(serveLogFile)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logFileHandle.Close()

	logger.Info("Starting milepost", "repo", cfg.Repo)

	var jnl = openJournal(serveDBPath, logger)
	if serveTestMode {
		jnl = nil
	}
	if jnl != nil {
		defer jnl.Close()
	}

	svc, repo := buildService(cfg, jnl, logger)

	if !repo.IsRepository(cmd.Context()) {
		return fmt.Errorf("not a git repository: %s", cfg.Repo)
	}

	srv := server.NewServer(svc, repo, jnl, cfg, logger, serveTestMode)

	logger.Info("Starting HTTP server", "host", serveHost, "port", servePort)
	if err := srv.Start(serveHost, servePort); err != nil {
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// setupLogging configures slog to write JSON to both the log file and
// stdout. The caller closes the returned file handle.
func setupLogging(logPath string) (*slog.Logger, *os.File, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return slog.New(handler), file, nil
}

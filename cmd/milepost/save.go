package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	saveConfigFile string
	saveDBPath     string
	savePush       bool
	saveVerbose    bool
)

var saveCmd = &cobra.Command{
	Use:   "save [note...]",
	Short: "Create a milestone from the working tree",
	Long: `Create a milestone commit from the current working tree.

All changes are staged, paths matching the configured ignored-files
pattern are dropped from the index, and a commit is created even when
the tree is clean. With push enabled the branch is published, setting
the upstream on first push.

Example:
  milepost save before risky refactor`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	saveCmd.Flags().StringVar(&saveDBPath, "db", getEnvOrDefault("MILEPOST_DB_PATH", "./milepost.db"), "Path to the operation journal database")
	saveCmd.Flags().BoolVar(&savePush, "push", false, "Push the branch after committing (overrides config)")
	saveCmd.Flags().BoolVarP(&saveVerbose, "verbose", "v", false, "Verbose logging")
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(saveConfigFile)
	if err != nil {
		return err
	}
	if savePush {
		cfg.PushOnSave = true
	}

	logger := newCLILogger(saveVerbose)
	jnl := openJournal(saveDBPath, logger)
	if jnl != nil {
		defer jnl.Close()
	}

	svc, _ := buildService(cfg, jnl, logger)
	note := strings.Join(args, " ")

	result, err := svc.Save(cmd.Context(), note)
	if err != nil {
		return err
	}

	fmt.Printf("Milestone created on %s\n", result.Branch)
	fmt.Printf("  Commit:  %s\n", result.Hash)
	fmt.Printf("  Subject: %s\n", result.Subject)
	if result.Unstaged > 0 {
		fmt.Printf("  Ignored: %d file(s) left unstaged\n", result.Unstaged)
	}
	if result.Pushed {
		fmt.Printf("  Pushed to %s\n", cfg.Remote)
	}
	return nil
}

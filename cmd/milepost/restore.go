package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	restoreConfigFile string
	restoreDBPath     string
	restoreYes        bool
	restoreForcePush  bool
	restoreVerbose    bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore HASH",
	Short: "Revert the branch to a milestone",
	Long: `Revert the current branch to a milestone commit.

This hard-resets the branch to the given commit and removes untracked
files, discarding every change made since. Protected branches (main,
master, and any configured additional base branches) reject reversion.

Example:
  milepost restore 4f2a91c`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	restoreCmd.Flags().StringVar(&restoreDBPath, "db", getEnvOrDefault("MILEPOST_DB_PATH", "./milepost.db"), "Path to the operation journal database")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Skip the confirmation prompt")
	restoreCmd.Flags().BoolVar(&restoreForcePush, "force-push", false, "Force-push the branch after reverting (overrides config)")
	restoreCmd.Flags().BoolVarP(&restoreVerbose, "verbose", "v", false, "Verbose logging")
}

func runRestore(cmd *cobra.Command, args []string) error {
	hash := args[0]

	cfg, err := loadConfig(restoreConfigFile)
	if err != nil {
		return err
	}
	if restoreForcePush {
		cfg.ForcePushOnRestore = true
	}

	logger := newCLILogger(restoreVerbose)
	jnl := openJournal(restoreDBPath, logger)
	if jnl != nil {
		defer jnl.Close()
	}

	svc, repo := buildService(cfg, jnl, logger)

	branch, err := repo.CurrentBranch(cmd.Context())
	if err != nil {
		return err
	}

	if !restoreYes {
		question := fmt.Sprintf(
			"Revert %s to %s? All changes since that milestone will be discarded", branch, hash)
		if !confirm(question) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := svc.Restore(cmd.Context(), hash); err != nil {
		return err
	}

	fmt.Printf("Branch %s reverted to %s\n", branch, hash)
	if cfg.ForcePushOnRestore {
		fmt.Printf("Remote branch on %s overwritten\n", cfg.Remote)
	}
	return nil
}

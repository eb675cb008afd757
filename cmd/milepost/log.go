package main

import (
	"fmt"
	"time"

	"milepost/internal/journal"

	"github.com/spf13/cobra"
)

var (
	logDBPath string
	logLimit  int
	logBranch string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recorded milestone operations",
	Long: `Show the operation journal: every save and restore milepost has
performed, newest first. This is an audit log of what milepost did;
the milestones themselves live in git.`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&logDBPath, "db", getEnvOrDefault("MILEPOST_DB_PATH", "./milepost.db"), "Path to the operation journal database")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum entries to show")
	logCmd.Flags().StringVar(&logBranch, "branch", "", "Only show operations on this branch")
}

func runLog(cmd *cobra.Command, args []string) error {
	logger := newCLILogger(false)
	jnl := openJournal(logDBPath, logger)
	if jnl == nil {
		return fmt.Errorf("journal not available at %s", logDBPath)
	}
	defer jnl.Close()

	var entries []journal.Entry
	var err error
	if logBranch != "" {
		entries, err = jnl.RecentForBranch(cmd.Context(), logBranch, logLimit)
	} else {
		entries, err = jnl.Recent(cmd.Context(), logLimit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No recorded operations.")
		return nil
	}

	for _, e := range entries {
		hash := ""
		if e.CommitHash != nil {
			hash = *e.CommitHash
			if len(hash) > 8 {
				hash = hash[:8]
			}
		}
		detail := ""
		if e.Note != nil {
			detail = *e.Note
		}
		if e.Status == "failed" && e.ErrorMessage != nil {
			detail = *e.ErrorMessage
		}
		fmt.Printf("%s  %-7s %-7s %-8s %s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.Action, e.Status, hash, e.Branch, detail)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listConfigFile string
	listVerbose    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List milestones on the current branch",
	Long: `List the milestones visible on the current branch, newest first.

With an upstream configured only unpushed, branch-local milestones are
shown; without one the most recent milestones across the history are
listed.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Verbose logging")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(listConfigFile)
	if err != nil {
		return err
	}

	logger := newCLILogger(listVerbose)
	svc, repo := buildService(cfg, nil, logger)

	branch, err := repo.CurrentBranch(cmd.Context())
	if err != nil {
		return err
	}

	records := svc.List(cmd.Context())
	if len(records) == 0 {
		fmt.Printf("No milestones on branch %s\n", branch)
		return nil
	}

	fmt.Printf("Milestones on %s:\n", branch)
	for _, rec := range records {
		hash := rec.Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		fmt.Printf("  %s  %s %s  %s\n", hash, rec.Date, rec.Time, rec.Message)
	}
	return nil
}

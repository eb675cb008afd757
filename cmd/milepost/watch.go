package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"milepost/internal/watcher"

	"github.com/spf13/cobra"
)

var (
	watchConfigFile string
	watchVerbose    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for branch switches and reprint milestones",
	Long: `Watch the repository for branch switches done outside milepost (for
example a checkout on the command line) and reprint the milestone list
whenever the branch changes. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(watchConfigFile)
	if err != nil {
		return err
	}

	logger := newCLILogger(watchVerbose)
	svc, repo := buildService(cfg, nil, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !repo.IsRepository(ctx) {
		return fmt.Errorf("not a git repository: %s", cfg.Repo)
	}

	headPath, err := repo.HeadPath(ctx)
	if err != nil {
		return err
	}

	printMilestones := func(branch string) {
		records := svc.List(ctx)
		if len(records) == 0 {
			fmt.Printf("[%s] no milestones\n", branch)
			return
		}
		fmt.Printf("[%s] %d milestone(s):\n", branch, len(records))
		for _, rec := range records {
			hash := rec.Hash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			fmt.Printf("  %s  %s %s  %s\n", hash, rec.Date, rec.Time, rec.Message)
		}
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	printMilestones(branch)

	w := watcher.New(
		headPath,
		time.Duration(cfg.PollInterval)*time.Second,
		repo.CurrentBranch,
		func(old, current string) {
			fmt.Printf("\nBranch switched: %s -> %s\n", old, current)
			printMilestones(current)
		},
		logger,
	)

	fmt.Printf("Watching %s (every %ds), Ctrl+C to stop\n", headPath, cfg.PollInterval)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

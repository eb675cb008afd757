package main

import (
	"fmt"

	"milepost/internal/remote"

	"github.com/spf13/cobra"
)

var (
	statusConfigFile string
	statusVerbose    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branch and milestone status",
	Long: `Show the current branch, whether it is protected from reversion, the
number of visible milestones, and (when a GitHub token is configured)
how the branch relates to its remote counterpart.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusConfigFile, "config", "c", getEnvOrDefault("MILEPOST_CONFIG_FILE", ""), "Path to milepost.yaml")
	statusCmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "Verbose logging")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(statusConfigFile)
	if err != nil {
		return err
	}

	logger := newCLILogger(statusVerbose)
	svc, repo := buildService(cfg, nil, logger)
	ctx := cmd.Context()

	if !repo.IsRepository(ctx) {
		return fmt.Errorf("not a git repository: %s", cfg.Repo)
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	records := svc.List(ctx)

	fmt.Printf("Repository: %s\n", cfg.Repo)
	fmt.Printf("Branch:     %s", branch)
	if cfg.IsProtectedBranch(branch) {
		fmt.Printf(" (protected)")
	}
	fmt.Println()
	fmt.Printf("Milestones: %d\n", len(records))

	inspector := remote.NewInspector(ctx, cfg.GitHub, repo.RemoteURL(ctx, cfg.Remote))
	if inspector == nil {
		return nil
	}

	head, err := repo.Head(ctx)
	if err != nil {
		head = ""
	}

	branchStatus, err := inspector.BranchStatus(ctx, branch, head)
	if err != nil {
		logger.Warn("remote inspection failed", "error", err)
		return nil
	}

	if !branchStatus.Exists {
		fmt.Printf("Remote:     branch not on GitHub yet\n")
		return nil
	}
	fmt.Printf("Remote:     ahead %d, behind %d\n", branchStatus.AheadBy, branchStatus.BehindBy)
	return nil
}

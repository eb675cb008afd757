package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // Set during build with -ldflags

var rootCmd = &cobra.Command{
	Use:   "milepost",
	Short: "Lightweight git milestones",
	Long: `Milepost wraps git to create lightweight milestone commits and to
revert a branch to one of them.

A milestone is an ordinary commit whose subject carries a fixed prefix;
milepost stages your working tree, commits it with your note, and can
push, list, and restore those checkpoints without any extra repository
state.`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// sessions.go implements the "tars sessions" command listing recent sessions.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 10, "Maximum sessions to list")
}

func runSessions(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	store, err := openStore(dir)
	if err != nil {
		return fmt.Errorf("no sessions found; initialize with: tars init")
	}
	defer func() { _ = store.Close() }()

	summaries, err := store.ListSessions(sessionsLimit)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}

	for _, sum := range summaries {
		fmt.Printf("%-36s  %-18s  %-10s  %s\n", sum.ID, sum.Phase, sum.Status, sum.Task)
	}
	return nil
}

// status.go implements the "tars status" command showing the current session.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tars-dev/tars/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Display the most recent active session: its phase, role, task,
and transition history.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	store, err := openStore(dir)
	if err != nil {
		return fmt.Errorf("no sessions found; initialize with: tars init")
	}
	defer func() { _ = store.Close() }()

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	sess, err := store.GetLatestActive(cfg.Project.Name)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		fmt.Println("No active session. Start one with /issue or /feature.")
		return nil
	}

	fmt.Println("TARS Status")
	fmt.Printf("Session: %s\n", sess.ID)
	fmt.Printf("Task:    %s\n", sess.Task)
	fmt.Printf("Phase:   %s\n", sess.Phase)
	fmt.Printf("Role:    %s\n", sess.Role)
	fmt.Println()

	transitions, err := store.GetTransitions(sess.ID)
	if err != nil {
		return fmt.Errorf("loading transitions: %w", err)
	}
	for _, tr := range transitions {
		fmt.Printf("  %s  %-18s -> %-18s  (%s)\n",
			tr.Timestamp.Format("15:04:05"), tr.From, tr.To, tr.Trigger)
	}

	return nil
}

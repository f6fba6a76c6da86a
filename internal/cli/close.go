// close.go implements the "tars close" command ending the active session.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tars-dev/tars/internal/config"
	"github.com/tars-dev/tars/internal/session"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the active session",
	Long: `Explicitly close the most recent active session, returning to Idle.
Closing is the only state-destroying action and is never implicit.`,
	RunE: runClose,
}

func runClose(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No active session to close.")
		return nil
	}

	from := sess.Phase
	sess.Phase = session.PhaseIdle
	sess.Role = session.RoleArchitect
	sess.Status = "closed"
	if err := store.UpdateSession(sess); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	_ = store.AddTransition(sess.ID, from, session.PhaseIdle, "close")

	fmt.Printf("Closed session %s.\n", sess.ID)
	return nil
}

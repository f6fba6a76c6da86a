// done.go implements the "tars done" command signalling completion.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tars-dev/tars/internal/config"
	"github.com/tars-dev/tars/internal/session"
)

var doneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark the executing session complete",
	Long: `Signal that execution of the approved plan has finished. Only valid
while a session is in the executing phase; the session returns to Idle
and is released.`,
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No active session.")
		return nil
	}
	if sess.Phase != session.PhaseExecuting {
		return fmt.Errorf("session %s is in %s, not executing", sess.ID, sess.Phase)
	}

	from := sess.Phase
	sess.Phase = session.PhaseIdle
	sess.Role = session.RoleArchitect
	sess.Status = "completed"
	if err := store.UpdateSession(sess); err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	_ = store.AddTransition(sess.ID, from, session.PhaseIdle, "done")

	fmt.Printf("Session %s complete.\n", sess.ID)
	return nil
}

// fallback.go handles non-TTY execution with a line-oriented REPL.
package tui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tars-dev/tars/internal/engine"
)

// runFallback reads inputs line by line from stdin and prints engine
// responses, for piped or scripted use.
func runFallback(eng *engine.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)
	var sessionID string

	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		resp, err := eng.Apply(context.Background(), sessionID, raw)
		if err != nil {
			return err
		}
		if resp.SessionID != "" {
			sessionID = resp.SessionID
		}

		switch resp.Kind {
		case engine.ValidationFailed:
			fmt.Printf("[%s] incomplete: %s\n", resp.Phase, strings.Join(resp.Missing, ", "))
		case engine.Rejected:
			fmt.Printf("[%s] rejected: %s\n", resp.Phase, resp.Message)
		default:
			fmt.Printf("[%s] %s\n", resp.Phase, resp.Message)
		}
	}

	return scanner.Err()
}

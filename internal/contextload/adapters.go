// adapters.go implements the default context sources: files under
// .tars/ for docs and decisions, git log for recent changes.
package contextload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// File names read from the .tars/ directory.
const (
	tarsDir       = ".tars"
	docsFile      = "ARCHITECTURE.md"
	decisionsFile = "decisions.md"
)

// ProjectLoader reads context from the project working tree.
type ProjectLoader struct {
	Dir string // project root
}

// NewProjectLoader returns a loader rooted at the given project directory.
func NewProjectLoader(dir string) *ProjectLoader {
	return &ProjectLoader{Dir: dir}
}

// LoadProjectDocs reads .tars/ARCHITECTURE.md. A missing file is an
// explicit absence, not an error.
func (p *ProjectLoader) LoadProjectDocs(ctx context.Context) (string, error) {
	return p.readOptional(ctx, docsFile)
}

// LoadDecisionHistory reads .tars/decisions.md.
func (p *ProjectLoader) LoadDecisionHistory(ctx context.Context) (string, error) {
	return p.readOptional(ctx, decisionsFile)
}

func (p *ProjectLoader) readOptional(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(p.Dir, tarsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

// LoadRecentChanges runs `git log --oneline -n limit` in the project
// directory and returns one summary line per commit.
func (p *ProjectLoader) LoadRecentChanges(ctx context.Context, limit int) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--oneline", "-n", fmt.Sprintf("%d", limit))
	cmd.Dir = p.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git log: %s: %w", strings.TrimSpace(string(out)), err)
	}

	var changes []string
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			changes = append(changes, trimmed)
		}
	}
	return changes, nil
}

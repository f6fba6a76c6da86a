// Package report renders validated artifacts to markdown and persists
// them under .tars/reports/.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tars-dev/tars/internal/artifact"
	"github.com/tars-dev/tars/internal/contextload"
)

// Writer persists rendered artifacts to the reports directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at the given reports directory.
// The directory is created lazily on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders the artifact and writes it to <kind>-<sessionID>.md.
func (w *Writer) Write(sessionID string, art *artifact.Artifact, bundle *contextload.Bundle) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("report: creating reports directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.md", fileStem(art.Kind), sessionID)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(Render(art, bundle)), 0644); err != nil {
		return fmt.Errorf("report: writing %s: %w", name, err)
	}

	return nil
}

func fileStem(kind artifact.Kind) string {
	switch kind {
	case artifact.KindIssueReport:
		return "issue"
	case artifact.KindFeatureReport:
		return "feature"
	default:
		return "plan"
	}
}

// Render produces the markdown form of an artifact, with context gaps
// surfaced in a trailing Gaps section. A nil bundle renders no Gaps.
func Render(art *artifact.Artifact, bundle *contextload.Bundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", art.Kind)

	for _, field := range artifact.RequiredFields(art.Kind) {
		value := art.Fields[field]
		if value == "" {
			value = "(not provided)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", field, value)
	}

	if len(art.Approaches) > 0 {
		b.WriteString("\n## Approaches\n")
		for _, ap := range art.Approaches {
			fmt.Fprintf(&b, "\n### approach: %s\n", ap.Name)
			fmt.Fprintf(&b, "- description: %s\n", ap.Description)
			fmt.Fprintf(&b, "- pros: %s\n", ap.Pros)
			fmt.Fprintf(&b, "- cons: %s\n", ap.Cons)
			fmt.Fprintf(&b, "- complexity: %s\n", ap.Complexity)
		}
	}

	if len(art.FileChanges) > 0 {
		b.WriteString("\n## File Changes\n\n")
		for _, fc := range art.FileChanges {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", fc.Tag, fc.Path, fc.Rationale)
		}
	}

	if len(art.VerifySteps) > 0 {
		b.WriteString("\n## Verification\n\n")
		for _, step := range art.VerifySteps {
			fmt.Fprintf(&b, "- verify: `%s`\n", step)
		}
	}

	if bundle != nil && len(bundle.Gaps) > 0 {
		b.WriteString("\n## Gaps\n\n")
		for _, gap := range bundle.Gaps {
			fmt.Fprintf(&b, "- %s: %s\n", gap.Source, gap.Reason)
		}
	}

	if art.Approved {
		b.WriteString("\nStatus: approved\n")
	}

	return b.String()
}

// parser.go folds drafted markdown into artifact fields.
package artifact

import (
	"fmt"
	"strings"
)

// ApplyDraft parses a block of drafted text into the artifact. It
// recognizes field lines ("- field: value"), approach sections
// ("### approach: Name" followed by field lines), tagged file-change
// lines ("- [NEW] path: rationale"), verification lines ("- verify: cmd"
// or a backticked command), and open questions ("- question: ...").
// Returned questions become the session's clarification requests.
// Unrecognized lines are ignored; drafting never fails.
func ApplyDraft(a *Artifact, text string) []string {
	if a.Approved {
		return nil // frozen after approval
	}

	var questions []string
	var approach *Approach

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if isApproachHeading(trimmed) {
			if approach != nil {
				a.addApproach(*approach)
			}
			name := trimmed[strings.Index(trimmed, ":")+1:]
			approach = &Approach{Name: strings.TrimSpace(name)}
			continue
		}

		// A non-approach heading closes the open approach section.
		if strings.HasPrefix(trimmed, "#") {
			if approach != nil {
				a.addApproach(*approach)
				approach = nil
			}
			continue
		}

		if approach != nil && parseApproachField(approach, trimmed) {
			continue
		}

		if fc, ok := parseFileChange(trimmed); ok {
			a.FileChanges = append(a.FileChanges, fc)
			a.Validated = false
			continue
		}

		if val, ok := extractField(trimmed, "verify"); ok {
			if cmd := stripBackticks(val); cmd != "" {
				a.VerifySteps = append(a.VerifySteps, cmd)
				a.Validated = false
			}
			continue
		}

		if val, ok := extractField(trimmed, "question"); ok {
			if val != "" {
				questions = append(questions, val)
			}
			continue
		}

		if name, val, ok := splitFieldLine(trimmed); ok {
			if canonical, known := canonicalField(a.Kind, name); known {
				a.SetField(canonical, val)
			}
			continue
		}
	}

	if approach != nil {
		a.addApproach(*approach)
	}

	return questions
}

// addApproach appends a named approach, replacing a prior entry with
// the same name so re-drafting refines rather than duplicates.
func (a *Artifact) addApproach(ap Approach) {
	if ap.Name == "" {
		return
	}
	for i := range a.Approaches {
		if strings.EqualFold(a.Approaches[i].Name, ap.Name) {
			a.Approaches[i] = ap
			a.Validated = false
			return
		}
	}
	a.Approaches = append(a.Approaches, ap)
	a.Validated = false
}

// isApproachHeading matches "### approach: Name" (any heading level).
func isApproachHeading(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	rest := strings.ToLower(strings.TrimLeft(line, "# "))
	return strings.HasPrefix(rest, "approach:")
}

// parseApproachField fills one field of an open approach section.
func parseApproachField(ap *Approach, line string) bool {
	for _, field := range []string{"description", "pros", "cons", "complexity"} {
		if val, ok := extractField(line, field); ok {
			switch field {
			case "description":
				ap.Description = val
			case "pros":
				ap.Pros = val
			case "cons":
				ap.Cons = val
			case "complexity":
				ap.Complexity = val
			}
			return true
		}
	}
	return false
}

// parseFileChange matches "- [NEW] path: rationale" (tag case-insensitive).
func parseFileChange(line string) (FileChange, bool) {
	rest, ok := strings.CutPrefix(line, "- [")
	if !ok {
		return FileChange{}, false
	}
	tagEnd := strings.Index(rest, "]")
	if tagEnd < 0 {
		return FileChange{}, false
	}

	var tag FileChangeTag
	switch strings.ToUpper(rest[:tagEnd]) {
	case "NEW":
		tag = TagNew
	case "MODIFY":
		tag = TagModify
	case "DELETE":
		tag = TagDelete
	default:
		return FileChange{}, false
	}

	body := strings.TrimSpace(rest[tagEnd+1:])
	path, rationale, _ := strings.Cut(body, ":")
	path = strings.TrimSpace(path)
	if path == "" {
		return FileChange{}, false
	}

	return FileChange{
		Tag:       tag,
		Path:      path,
		Rationale: strings.TrimSpace(rationale),
	}, true
}

// extractField checks if the line matches "- fieldName: value" and returns the value.
// Also handles the form without the leading dash.
func extractField(line, fieldName string) (string, bool) {
	prefix := fmt.Sprintf("- %s:", fieldName)
	if strings.HasPrefix(strings.ToLower(line), prefix) {
		return strings.TrimSpace(line[len(prefix):]), true
	}

	prefix2 := fmt.Sprintf("%s:", fieldName)
	if strings.HasPrefix(strings.ToLower(line), prefix2) {
		return strings.TrimSpace(line[len(prefix2):]), true
	}

	return "", false
}

// splitFieldLine splits a generic "- name: value" line.
func splitFieldLine(line string) (string, string, bool) {
	rest, ok := strings.CutPrefix(line, "- ")
	if !ok {
		return "", "", false
	}
	name, val, found := strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, " ") {
		return "", "", false
	}
	return name, strings.TrimSpace(val), true
}

// canonicalField resolves a drafted field name against the kind's
// schema, case-insensitively, so "summary" and "Summary" both land on
// the required-field key.
func canonicalField(kind Kind, name string) (string, bool) {
	for _, field := range requiredFields[kind] {
		if strings.EqualFold(field, name) {
			return field, true
		}
	}
	return "", false
}

// stripBackticks removes a surrounding backtick pair from a command string.
func stripBackticks(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") && len(s) > 1 {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// validator.go checks draft completeness against each kind's schema.
package artifact

import (
	"sort"
	"strings"
)

// ValidationResult reports whether a draft satisfies its kind's
// completeness contract. Missing is sorted for deterministic output;
// submitting the same incomplete fields twice yields the same set.
type ValidationResult struct {
	OK      bool
	Missing []string
}

// Validate performs the structural completeness check for a draft.
// It checks presence and non-emptiness of every required field,
// plus the per-kind entry minimums: a feature report needs at least
// two compared approaches, a plan needs at least one tagged file
// change and one verification step with a literal command string.
// Validate never mutates the artifact.
func Validate(a *Artifact) ValidationResult {
	var missing []string

	for _, field := range requiredFields[a.Kind] {
		if strings.TrimSpace(a.Fields[field]) == "" {
			missing = append(missing, field)
		}
	}

	switch a.Kind {
	case KindFeatureReport:
		if len(a.Approaches) < 2 {
			missing = append(missing, "approaches")
		}
	case KindPlan:
		if len(a.FileChanges) == 0 {
			missing = append(missing, "fileChanges")
		}
		if !hasExecutableStep(a.VerifySteps) {
			missing = append(missing, "verificationStep")
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return ValidationResult{Missing: missing}
	}
	return ValidationResult{OK: true}
}

// hasExecutableStep reports whether at least one verification step is a
// literal command string rather than free prose.
func hasExecutableStep(steps []string) bool {
	for _, s := range steps {
		if LooksLikeCommand(s) {
			return true
		}
	}
	return false
}

// LooksLikeCommand applies a cheap structural test for command strings:
// non-empty, no sentence-style trailing period, and a plain lowercase
// program name as the first token.
func LooksLikeCommand(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	// Sentence-style trailing period disqualifies, but "./..." is a path.
	if strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "...") {
		return false
	}
	first := strings.Fields(s)[0]
	for _, r := range first {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' || r == '/'
		if !valid {
			return false
		}
	}
	return true
}

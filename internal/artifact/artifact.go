// Package artifact defines the structured reports produced by the
// architect phases and the completeness rules that gate them.
package artifact

import (
	"sort"
	"strings"
	"time"
)

// Kind identifies the artifact schema.
type Kind string

const (
	KindIssueReport   Kind = "IssueReport"
	KindFeatureReport Kind = "FeatureReport"
	KindPlan          Kind = "Plan"
)

// FileChangeTag classifies an affected-file entry in a plan.
type FileChangeTag string

const (
	TagNew    FileChangeTag = "NEW"
	TagModify FileChangeTag = "MODIFY"
	TagDelete FileChangeTag = "DELETE"
)

// FileChange is one affected-file entry in a plan.
type FileChange struct {
	Tag       FileChangeTag
	Path      string
	Rationale string
}

// Approach is one compared option in a feature report.
type Approach struct {
	Name        string
	Description string
	Pros        string
	Cons        string
	Complexity  string
}

// Artifact is a structured report drafted during a non-executing phase.
// Fields maps required-field names to their drafted values; the
// structured slices carry the entries that have per-entry schemas.
type Artifact struct {
	Kind        Kind
	Fields      map[string]string
	Approaches  []Approach
	FileChanges []FileChange
	VerifySteps []string
	Validated   bool
	Approved    bool
	CreatedAt   time.Time
}

// New returns an empty draft of the given kind.
func New(kind Kind) *Artifact {
	return &Artifact{
		Kind:      kind,
		Fields:    make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}
}

// SetField records a drafted field value and invalidates the draft so
// the validator must run again before the artifact can advance.
func (a *Artifact) SetField(name, value string) {
	if a.Approved {
		return // an approved plan is frozen
	}
	a.Fields[name] = strings.TrimSpace(value)
	a.Validated = false
}

// requiredFields maps each kind to its fixed required-field set.
var requiredFields = map[Kind][]string{
	KindIssueReport: {
		"type", "component", "severity", "summary", "suspectFiles",
		"rootCauseHypothesis", "openQuestions", "recommendedSeverity",
	},
	KindFeatureReport: {
		"featureName", "category", "component", "priority", "complexity",
		"description", "currentState", "ecosystemResearch",
		"recommendation", "risks", "openQuestions",
	},
	KindPlan: {
		"role", "scope", "problemStatement", "constraints", "dependencies",
	},
}

// RequiredFields returns the required-field names for a kind, sorted.
func RequiredFields(kind Kind) []string {
	fields := append([]string(nil), requiredFields[kind]...)
	sort.Strings(fields)
	return fields
}

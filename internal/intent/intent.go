// Package intent turns raw user input into typed intents for the
// phase-gate engine. Parsing is pure and total: every input maps to
// exactly one Intent or one Error, and malformed but recognizable
// text downgrades to FreeText rather than failing.
package intent

import "github.com/tars-dev/tars/internal/session"

// Kind enumerates the recognized intent types.
type Kind string

const (
	KindStartIssue          Kind = "start_issue"
	KindStartFeature        Kind = "start_feature"
	KindPlan                Kind = "plan"
	KindProceed             Kind = "proceed"
	KindCompletion          Kind = "completion"
	KindClarificationAnswer Kind = "clarification_answer"
	KindFreeText            Kind = "free_text"
)

// Intent is a parsed user command.
type Intent struct {
	Kind    Kind
	Payload string // description, clarification text, or free text
}

// Snapshot carries the session facts the parser needs to gate commands.
// It is a value so parsing stays side-effect free.
type Snapshot struct {
	Phase             session.Phase
	HasValidatedDraft bool // a validated, non-approved artifact exists
	ClarificationOpen bool
}

// ErrorCode classifies parser rejections.
type ErrorCode string

const (
	// PhaseConflict: a slash command arrived while a session is already open.
	PhaseConflict ErrorCode = "phase_conflict"
	// NoPendingArtifact: "plan" without a validated, non-approved draft.
	NoPendingArtifact ErrorCode = "no_pending_artifact"
	// NothingToApprove: "proceed" outside AwaitingApproval.
	NothingToApprove ErrorCode = "nothing_to_approve"
)

// Error is a user-facing, recoverable parser rejection. The session is
// never modified by a rejected input.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Msg
}

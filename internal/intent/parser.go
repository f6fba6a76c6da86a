// parser.go maps raw input lines onto intents given the session phase.
package intent

import (
	"strings"

	"github.com/tars-dev/tars/internal/session"
)

// Parse classifies raw user input against the session snapshot.
// Slash commands open an intake session and are valid only while Idle;
// bare keywords are matched case-insensitively after trimming. Anything
// unrecognized is a clarification answer when a clarification is open,
// and free-text refinement otherwise.
func Parse(raw string, snap Snapshot) (Intent, *Error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "/issue"):
		return parseStart(KindStartIssue, trimmed, "/issue", snap)
	case strings.HasPrefix(lower, "/feature"):
		return parseStart(KindStartFeature, trimmed, "/feature", snap)
	}

	switch lower {
	case "plan":
		if snap.Phase != session.PhaseIntake && snap.Phase != session.PhasePlanning {
			return Intent{}, &Error{
				Code: NoPendingArtifact,
				Msg:  "no research artifact is ready for planning",
			}
		}
		if !snap.HasValidatedDraft {
			return Intent{}, &Error{
				Code: NoPendingArtifact,
				Msg:  "the current draft has not passed validation yet",
			}
		}
		return Intent{Kind: KindPlan}, nil

	case "proceed":
		if snap.Phase != session.PhaseAwaitingApproval {
			return Intent{}, &Error{
				Code: NothingToApprove,
				Msg:  "no plan is awaiting approval",
			}
		}
		return Intent{Kind: KindProceed}, nil

	case "done":
		// Completion signal is only meaningful while executing; anywhere
		// else the word is just more prose for the current draft.
		if snap.Phase == session.PhaseExecuting {
			return Intent{Kind: KindCompletion}, nil
		}
	}

	if snap.ClarificationOpen {
		return Intent{Kind: KindClarificationAnswer, Payload: trimmed}, nil
	}
	return Intent{Kind: KindFreeText, Payload: trimmed}, nil
}

// parseStart handles the /issue and /feature command forms.
func parseStart(kind Kind, trimmed, command string, snap Snapshot) (Intent, *Error) {
	if snap.Phase != session.PhaseIdle {
		return Intent{}, &Error{
			Code: PhaseConflict,
			Msg:  "a session is already open; close or complete it before starting another",
		}
	}
	payload := strings.TrimSpace(trimmed[len(command):])
	return Intent{Kind: kind, Payload: payload}, nil
}

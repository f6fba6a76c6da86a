// response.go defines the engine's per-intent outcome envelope.
package engine

import "github.com/tars-dev/tars/internal/session"

// ResponseKind classifies the outcome of applying one input.
type ResponseKind string

const (
	// Accepted: the input was applied; Phase reflects any transition.
	Accepted ResponseKind = "accepted"
	// Rejected: the input was refused; session state is unchanged.
	Rejected ResponseKind = "rejected"
	// ValidationFailed: the draft is still incomplete; Missing lists the
	// unmet fields. Normal control flow, not an error.
	ValidationFailed ResponseKind = "validation_failed"
	// ApprovalPending: a plan is now held at the approval gate.
	ApprovalPending ResponseKind = "approval_pending"
)

// Response is what the engine returns for every applied input. A
// Rejected response carries the rejection as a value in Err; the Apply
// call itself only errors on infrastructure failures.
type Response struct {
	Kind      ResponseKind
	SessionID string
	Phase     session.Phase
	Role      session.Role
	Err       error    // intent.Error or approval gate error when Rejected
	Missing   []string // unmet fields when ValidationFailed
	PendingID string   // approval marker when ApprovalPending
	Message   string   // human-readable summary for the REPL
}

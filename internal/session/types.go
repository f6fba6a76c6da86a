// Package session provides SQLite-backed persistence for TARS sessions.
package session

import "time"

// Phase enumerates the workflow phases a session moves through.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseIntake           Phase = "intake"
	PhasePlanning         Phase = "planning"
	PhaseAwaitingApproval Phase = "awaiting_approval"
	PhaseExecuting        Phase = "executing"
)

// Role enumerates the actor responsible for the current phase.
// The architect reasons and drafts; the builder executes an approved
// plan verbatim and never alters it.
type Role string

const (
	RoleArchitect Role = "architect"
	RoleBuilder   Role = "builder"
)

// RoleFor returns the role implied by a phase: Executing is builder
// territory, every other phase belongs to the architect.
func RoleFor(p Phase) Role {
	if p == PhaseExecuting {
		return RoleBuilder
	}
	return RoleArchitect
}

// Session represents one TARS conversation/work unit.
type Session struct {
	ID        string
	Project   string
	Task      string
	Kind      string // artifact kind being drafted, set at intake
	Phase     Phase
	Role      Role
	Status    string // active, completed, closed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition records one applied phase change in a session's history.
type Transition struct {
	ID        int
	SessionID string
	From      Phase
	To        Phase
	Trigger   string // the intent kind that caused the transition
	Timestamp time.Time
}

// Message represents a chat message within a session.
type Message struct {
	ID        int
	SessionID string
	Role      string // user, assistant
	Content   string
	Timestamp time.Time
}

// Summary provides a high-level view of a session for listing.
type Summary struct {
	ID        string
	Task      string
	Phase     Phase
	Status    string
	UpdatedAt time.Time
}

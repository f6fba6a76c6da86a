// Package approval tracks per-session pending approvals and enforces
// the one-pending-at-a-time invariant on the road to execution.
package approval

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tars-dev/tars/internal/artifact"
	"github.com/tars-dev/tars/internal/session"
)

// Decision is the outcome the user hands to a pending approval.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionRefine  Decision = "refine"
)

// ErrAlreadyPending signals a second requestApproval while one is open.
var ErrAlreadyPending = errors.New("approval already pending for session")

// ErrNothingPending signals a resolve with no open approval.
var ErrNothingPending = errors.New("no approval pending for session")

// ErrNotValidated signals a requestApproval on a draft that has not
// passed the validator.
var ErrNotValidated = errors.New("artifact has not passed validation")

// Pending is one open approval marker.
type Pending struct {
	ID          string
	SessionID   string
	Artifact    *artifact.Artifact
	ReturnPhase session.Phase // phase to fall back to on reject/refine
	RequestedAt time.Time
}

// Gate enforces the approval invariants. Safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*Pending // keyed by session id
}

// NewGate returns an empty approval gate.
func NewGate() *Gate {
	return &Gate{pending: make(map[string]*Pending)}
}

// RequestApproval opens a pending approval for a validator-passed
// artifact. At most one approval may be pending per session; a second
// concurrent request fails with ErrAlreadyPending.
func (g *Gate) RequestApproval(sessionID string, art *artifact.Artifact, returnPhase session.Phase) (string, error) {
	if !art.Validated {
		return "", ErrNotValidated
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, open := g.pending[sessionID]; open {
		return "", fmt.Errorf("session %s: %w", sessionID, ErrAlreadyPending)
	}

	p := &Pending{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Artifact:    art,
		ReturnPhase: returnPhase,
		RequestedAt: time.Now().UTC(),
	}
	g.pending[sessionID] = p
	return p.ID, nil
}

// Resolve closes the pending approval for a session. Approve is the
// only path that marks the artifact approved; reject and refine clear
// the marker and leave the artifact content intact so it seeds the
// next draft.
func (g *Gate) Resolve(sessionID string, decision Decision) (*Pending, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, open := g.pending[sessionID]
	if !open {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNothingPending)
	}
	delete(g.pending, sessionID)

	if decision == DecisionApprove {
		p.Artifact.Approved = true
	}
	return p, nil
}

// IsPending reports whether a session has an open approval.
func (g *Gate) IsPending(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, open := g.pending[sessionID]
	return open
}

package approval

import (
	"errors"
	"sync"
	"testing"

	"github.com/tars-dev/tars/internal/artifact"
	"github.com/tars-dev/tars/internal/session"
)

func validatedPlan() *artifact.Artifact {
	a := artifact.New(artifact.KindPlan)
	a.Validated = true
	return a
}

func TestRequestApproval_RejectsUnvalidated(t *testing.T) {
	g := NewGate()
	a := artifact.New(artifact.KindPlan)

	if _, err := g.RequestApproval("s1", a, session.PhasePlanning); !errors.Is(err, ErrNotValidated) {
		t.Errorf("err = %v, want ErrNotValidated", err)
	}
}

func TestRequestApproval_SecondIsAlreadyPending(t *testing.T) {
	g := NewGate()

	if _, err := g.RequestApproval("s1", validatedPlan(), session.PhasePlanning); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := g.RequestApproval("s1", validatedPlan(), session.PhasePlanning); !errors.Is(err, ErrAlreadyPending) {
		t.Errorf("err = %v, want ErrAlreadyPending", err)
	}
}

func TestRequestApproval_IndependentSessions(t *testing.T) {
	g := NewGate()

	if _, err := g.RequestApproval("s1", validatedPlan(), session.PhasePlanning); err != nil {
		t.Fatalf("s1 request failed: %v", err)
	}
	if _, err := g.RequestApproval("s2", validatedPlan(), session.PhasePlanning); err != nil {
		t.Errorf("s2 request failed: %v", err)
	}
}

func TestResolve_ApproveMarksArtifact(t *testing.T) {
	g := NewGate()
	plan := validatedPlan()
	id, err := g.RequestApproval("s1", plan, session.PhasePlanning)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	p, err := g.Resolve("s1", DecisionApprove)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.ID != id {
		t.Errorf("pending ID = %q, want %q", p.ID, id)
	}
	if !plan.Approved {
		t.Error("approve must mark the artifact approved")
	}
	if g.IsPending("s1") {
		t.Error("resolved approval still pending")
	}
}

func TestResolve_RefineKeepsContentUnapproved(t *testing.T) {
	g := NewGate()
	plan := validatedPlan()
	plan.SetField("scope", "auth")
	plan.Validated = true

	if _, err := g.RequestApproval("s1", plan, session.PhasePlanning); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	p, err := g.Resolve("s1", DecisionRefine)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if plan.Approved {
		t.Error("refine must not approve the artifact")
	}
	if p.Artifact.Fields["scope"] != "auth" {
		t.Error("refine must retain prior content to seed the next draft")
	}
	if p.ReturnPhase != session.PhasePlanning {
		t.Errorf("ReturnPhase = %q, want planning", p.ReturnPhase)
	}
}

func TestResolve_NothingPending(t *testing.T) {
	g := NewGate()
	if _, err := g.Resolve("s1", DecisionApprove); !errors.Is(err, ErrNothingPending) {
		t.Errorf("err = %v, want ErrNothingPending", err)
	}
}

func TestRequestApproval_ConcurrentSingleWinner(t *testing.T) {
	g := NewGate()

	const workers = 16
	var wg sync.WaitGroup
	granted := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if id, err := g.RequestApproval("s1", validatedPlan(), session.PhasePlanning); err == nil {
				granted <- id
			}
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for range granted {
		count++
	}
	if count != 1 {
		t.Errorf("granted %d approvals concurrently, want exactly 1", count)
	}
}

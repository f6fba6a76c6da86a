package intent

import (
	"testing"

	"github.com/tars-dev/tars/internal/session"
)

func TestParse_StartIssueFromIdle(t *testing.T) {
	in, perr := Parse("/issue login button crashes", Snapshot{Phase: session.PhaseIdle})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindStartIssue {
		t.Errorf("Kind = %q, want %q", in.Kind, KindStartIssue)
	}
	if in.Payload != "login button crashes" {
		t.Errorf("Payload = %q, want %q", in.Payload, "login button crashes")
	}
}

func TestParse_StartFeatureCaseInsensitive(t *testing.T) {
	in, perr := Parse("  /Feature add dark mode  ", Snapshot{Phase: session.PhaseIdle})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindStartFeature {
		t.Errorf("Kind = %q, want %q", in.Kind, KindStartFeature)
	}
	if in.Payload != "add dark mode" {
		t.Errorf("Payload = %q, want %q", in.Payload, "add dark mode")
	}
}

func TestParse_SlashCommandOutsideIdle(t *testing.T) {
	phases := []session.Phase{
		session.PhaseIntake,
		session.PhasePlanning,
		session.PhaseAwaitingApproval,
		session.PhaseExecuting,
	}
	for _, phase := range phases {
		_, perr := Parse("/issue another one", Snapshot{Phase: phase})
		if perr == nil {
			t.Fatalf("phase %s: expected error, got none", phase)
		}
		if perr.Code != PhaseConflict {
			t.Errorf("phase %s: Code = %q, want %q", phase, perr.Code, PhaseConflict)
		}
	}
}

func TestParse_PlanKeyword(t *testing.T) {
	tests := []struct {
		name     string
		snap     Snapshot
		wantKind Kind
		wantCode ErrorCode
	}{
		{
			name:     "intake with validated draft",
			snap:     Snapshot{Phase: session.PhaseIntake, HasValidatedDraft: true},
			wantKind: KindPlan,
		},
		{
			name:     "planning with validated draft",
			snap:     Snapshot{Phase: session.PhasePlanning, HasValidatedDraft: true},
			wantKind: KindPlan,
		},
		{
			name:     "intake without validated draft",
			snap:     Snapshot{Phase: session.PhaseIntake},
			wantCode: NoPendingArtifact,
		},
		{
			name:     "idle",
			snap:     Snapshot{Phase: session.PhaseIdle},
			wantCode: NoPendingArtifact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, perr := Parse("PLAN", tt.snap)
			if tt.wantCode != "" {
				if perr == nil {
					t.Fatal("expected error, got none")
				}
				if perr.Code != tt.wantCode {
					t.Errorf("Code = %q, want %q", perr.Code, tt.wantCode)
				}
				return
			}
			if perr != nil {
				t.Fatalf("unexpected error: %v", perr)
			}
			if in.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", in.Kind, tt.wantKind)
			}
		})
	}
}

func TestParse_ProceedOnlyWhileAwaitingApproval(t *testing.T) {
	in, perr := Parse("proceed", Snapshot{Phase: session.PhaseAwaitingApproval})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindProceed {
		t.Errorf("Kind = %q, want %q", in.Kind, KindProceed)
	}

	for _, phase := range []session.Phase{session.PhaseIdle, session.PhaseIntake, session.PhasePlanning, session.PhaseExecuting} {
		_, perr := Parse("proceed", Snapshot{Phase: phase})
		if perr == nil || perr.Code != NothingToApprove {
			t.Errorf("phase %s: expected NothingToApprove, got %v", phase, perr)
		}
	}
}

func TestParse_DoneWhileExecuting(t *testing.T) {
	in, perr := Parse("done", Snapshot{Phase: session.PhaseExecuting})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindCompletion {
		t.Errorf("Kind = %q, want %q", in.Kind, KindCompletion)
	}

	// Outside Executing the word is just draft prose.
	in, perr = Parse("done", Snapshot{Phase: session.PhaseIntake})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindFreeText {
		t.Errorf("Kind = %q, want %q", in.Kind, KindFreeText)
	}
}

func TestParse_ClarificationAnswer(t *testing.T) {
	in, perr := Parse("it only happens on mobile", Snapshot{
		Phase:             session.PhaseIntake,
		ClarificationOpen: true,
	})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindClarificationAnswer {
		t.Errorf("Kind = %q, want %q", in.Kind, KindClarificationAnswer)
	}
	if in.Payload != "it only happens on mobile" {
		t.Errorf("Payload = %q", in.Payload)
	}
}

func TestParse_FreeTextFallback(t *testing.T) {
	in, perr := Parse("- severity: high", Snapshot{Phase: session.PhaseIntake})
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if in.Kind != KindFreeText {
		t.Errorf("Kind = %q, want %q", in.Kind, KindFreeText)
	}
}

package artifact

import (
	"reflect"
	"testing"
)

func fillRequired(a *Artifact) {
	for _, field := range RequiredFields(a.Kind) {
		a.SetField(field, "value")
	}
}

func TestValidate_IssueReportComplete(t *testing.T) {
	a := New(KindIssueReport)
	fillRequired(a)

	result := Validate(a)
	if !result.OK {
		t.Fatalf("expected OK, missing = %v", result.Missing)
	}
}

func TestValidate_MissingFieldsDeterministic(t *testing.T) {
	a := New(KindIssueReport)
	a.SetField("summary", "login crashes")
	a.SetField("type", "bug")

	first := Validate(a)
	second := Validate(a)

	if first.OK {
		t.Fatal("expected validation failure")
	}
	if !reflect.DeepEqual(first.Missing, second.Missing) {
		t.Errorf("re-validation differs: %v vs %v", first.Missing, second.Missing)
	}

	want := []string{
		"component", "openQuestions", "recommendedSeverity",
		"rootCauseHypothesis", "severity", "suspectFiles",
	}
	if !reflect.DeepEqual(first.Missing, want) {
		t.Errorf("Missing = %v, want %v", first.Missing, want)
	}
}

func TestValidate_WhitespaceFieldCountsAsMissing(t *testing.T) {
	a := New(KindIssueReport)
	fillRequired(a)
	a.Fields["severity"] = "   "

	result := Validate(a)
	if result.OK {
		t.Fatal("expected validation failure")
	}
	if !reflect.DeepEqual(result.Missing, []string{"severity"}) {
		t.Errorf("Missing = %v, want [severity]", result.Missing)
	}
}

func TestValidate_FeatureNeedsTwoApproaches(t *testing.T) {
	a := New(KindFeatureReport)
	fillRequired(a)
	a.Approaches = []Approach{{Name: "CSS variables"}}

	result := Validate(a)
	if result.OK {
		t.Fatal("expected validation failure with one approach")
	}
	if !reflect.DeepEqual(result.Missing, []string{"approaches"}) {
		t.Errorf("Missing = %v, want [approaches]", result.Missing)
	}

	a.Approaches = append(a.Approaches, Approach{Name: "Theme provider"})
	if result := Validate(a); !result.OK {
		t.Errorf("expected OK with two approaches, missing = %v", result.Missing)
	}
}

func TestValidate_IssueHasNoApproachMinimum(t *testing.T) {
	a := New(KindIssueReport)
	fillRequired(a)

	if result := Validate(a); !result.OK {
		t.Errorf("issue report should not require approaches, missing = %v", result.Missing)
	}
}

func TestValidate_PlanNeedsFileChangeAndVerifyStep(t *testing.T) {
	a := New(KindPlan)
	fillRequired(a)

	result := Validate(a)
	if result.OK {
		t.Fatal("expected validation failure")
	}
	want := []string{"fileChanges", "verificationStep"}
	if !reflect.DeepEqual(result.Missing, want) {
		t.Errorf("Missing = %v, want %v", result.Missing, want)
	}

	a.FileChanges = []FileChange{{Tag: TagModify, Path: "src/app.ts"}}
	result = Validate(a)
	if !reflect.DeepEqual(result.Missing, []string{"verificationStep"}) {
		t.Errorf("Missing = %v, want [verificationStep]", result.Missing)
	}

	a.VerifySteps = []string{"go test ./..."}
	if result := Validate(a); !result.OK {
		t.Errorf("expected OK, missing = %v", result.Missing)
	}
}

func TestValidate_ProseVerifyStepRejected(t *testing.T) {
	a := New(KindPlan)
	fillRequired(a)
	a.FileChanges = []FileChange{{Tag: TagNew, Path: "src/theme.ts"}}
	a.VerifySteps = []string{"Manually check that the page looks right."}

	result := Validate(a)
	if result.OK {
		t.Fatal("prose verification step should not satisfy the plan contract")
	}
	if !reflect.DeepEqual(result.Missing, []string{"verificationStep"}) {
		t.Errorf("Missing = %v, want [verificationStep]", result.Missing)
	}
}

func TestLooksLikeCommand(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"go test ./...", true},
		{"pnpm lint", true},
		{"./scripts/check.sh --fast", true},
		{"", false},
		{"Run the tests.", false},
		{"Check that everything works", false},
	}
	for _, tt := range tests {
		if got := LooksLikeCommand(tt.in); got != tt.want {
			t.Errorf("LooksLikeCommand(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	a := New(KindFeatureReport)
	a.SetField("featureName", "dark mode")

	before := len(a.Fields)
	_ = Validate(a)
	if len(a.Fields) != before {
		t.Error("Validate mutated the artifact's fields")
	}
	if a.Validated {
		t.Error("Validate must not set the Validated flag itself")
	}
}

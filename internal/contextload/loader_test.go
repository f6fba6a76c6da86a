package contextload

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubLoader lets each retrieval be scripted independently.
type stubLoader struct {
	docs       string
	docsErr    error
	history    string
	historyErr error
	changes    []string
	changesErr error
	delay      time.Duration
}

func (s *stubLoader) LoadProjectDocs(ctx context.Context) (string, error) {
	return s.docs, s.docsErr
}

func (s *stubLoader) LoadDecisionHistory(ctx context.Context) (string, error) {
	return s.history, s.historyErr
}

func (s *stubLoader) LoadRecentChanges(ctx context.Context, limit int) ([]string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.changesErr != nil {
		return nil, s.changesErr
	}
	if limit < len(s.changes) {
		return s.changes[:limit], nil
	}
	return s.changes, nil
}

func TestLoad_AllSourcesPresent(t *testing.T) {
	l := &stubLoader{
		docs:    "architecture notes",
		history: "decision log",
		changes: []string{"abc123 fix login", "def456 add tests"},
	}

	b := Load(context.Background(), l, 10, time.Second)

	if b.ProjectDocs != "architecture notes" {
		t.Errorf("ProjectDocs = %q", b.ProjectDocs)
	}
	if b.DecisionHistory != "decision log" {
		t.Errorf("DecisionHistory = %q", b.DecisionHistory)
	}
	if len(b.RecentChanges) != 2 {
		t.Errorf("RecentChanges = %v", b.RecentChanges)
	}
	if len(b.Gaps) != 0 {
		t.Errorf("Gaps = %v, want none", b.Gaps)
	}
}

func TestLoad_FailureDegradesToGap(t *testing.T) {
	l := &stubLoader{
		docs:       "",
		historyErr: errors.New("store unreachable"),
		changes:    []string{"abc123 fix login"},
	}

	b := Load(context.Background(), l, 10, time.Second)

	if len(b.Gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %v", b.Gaps)
	}
	sources := map[string]bool{}
	for _, g := range b.Gaps {
		sources[g.Source] = true
	}
	if !sources[SourceProjectDocs] || !sources[SourceDecisionHistory] {
		t.Errorf("gap sources = %v", sources)
	}
	// The failing sources never abort the bundle.
	if len(b.RecentChanges) != 1 {
		t.Errorf("RecentChanges = %v", b.RecentChanges)
	}
}

func TestLoad_TimeoutBecomesGap(t *testing.T) {
	l := &stubLoader{
		docs:    "notes",
		history: "log",
		changes: []string{"abc123"},
		delay:   200 * time.Millisecond,
	}

	b := Load(context.Background(), l, 10, 20*time.Millisecond)

	if len(b.Gaps) != 1 {
		t.Fatalf("expected 1 gap, got %v", b.Gaps)
	}
	if b.Gaps[0].Source != SourceRecentChanges {
		t.Errorf("gap source = %q, want %q", b.Gaps[0].Source, SourceRecentChanges)
	}
	if b.ProjectDocs != "notes" || b.DecisionHistory != "log" {
		t.Error("timely sources must still land in the bundle")
	}
}

func TestLoad_ChangeLimitApplied(t *testing.T) {
	l := &stubLoader{
		docs:    "notes",
		history: "log",
		changes: []string{"a", "b", "c", "d"},
	}

	b := Load(context.Background(), l, 2, time.Second)

	if len(b.RecentChanges) != 2 {
		t.Errorf("RecentChanges = %v, want 2 entries", b.RecentChanges)
	}
}

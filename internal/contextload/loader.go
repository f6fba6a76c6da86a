// Package contextload gathers optional project context before drafting.
// Each of the three retrievals is independent: a missing or failing
// source degrades to a Gap annotation, never an error, and the bundle
// is ready only once all three have settled.
package contextload

import (
	"context"
	"sync"
	"time"
)

// Loader is the boundary to the external context stores. All methods
// are read-only and side-effect-free from the engine's perspective.
type Loader interface {
	LoadProjectDocs(ctx context.Context) (string, error)
	LoadDecisionHistory(ctx context.Context) (string, error)
	LoadRecentChanges(ctx context.Context, limit int) ([]string, error)
}

// Gap records the absence of an optional context source. Gaps surface
// in the drafted artifact's "Gaps" section.
type Gap struct {
	Source string
	Reason string
}

// Bundle holds whatever context the three retrievals produced.
type Bundle struct {
	ProjectDocs     string
	DecisionHistory string
	RecentChanges   []string
	Gaps            []Gap
}

// Source names used in gap annotations.
const (
	SourceProjectDocs     = "project_docs"
	SourceDecisionHistory = "decision_history"
	SourceRecentChanges   = "recent_changes"
)

// Load runs the three retrievals concurrently, each under its own
// timeout, and waits for all of them to settle. A retrieval that errors
// or times out is recorded as a gap; an empty result is recorded as an
// explicit absence.
func Load(ctx context.Context, l Loader, changeLimit int, timeout time.Duration) *Bundle {
	b := &Bundle{}

	var mu sync.Mutex
	var wg sync.WaitGroup

	addGap := func(source, reason string) {
		mu.Lock()
		b.Gaps = append(b.Gaps, Gap{Source: source, Reason: reason})
		mu.Unlock()
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		docs, err := l.LoadProjectDocs(rctx)
		if err != nil {
			addGap(SourceProjectDocs, err.Error())
			return
		}
		if docs == "" {
			addGap(SourceProjectDocs, "no project documentation found")
			return
		}
		mu.Lock()
		b.ProjectDocs = docs
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		history, err := l.LoadDecisionHistory(rctx)
		if err != nil {
			addGap(SourceDecisionHistory, err.Error())
			return
		}
		if history == "" {
			addGap(SourceDecisionHistory, "no decision history found")
			return
		}
		mu.Lock()
		b.DecisionHistory = history
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		changes, err := l.LoadRecentChanges(rctx, changeLimit)
		if err != nil {
			addGap(SourceRecentChanges, err.Error())
			return
		}
		if len(changes) == 0 {
			addGap(SourceRecentChanges, "no recent changes found")
			return
		}
		mu.Lock()
		b.RecentChanges = changes
		mu.Unlock()
	}()

	wg.Wait()
	return b
}

// Package engine implements the phase-gate state machine that drives a
// TARS session from intake through planning to gated execution. No path
// reaches Executing except through an approved, validated artifact;
// clarification and refinement loops are same-phase self-transitions so
// the gate invariant holds regardless of how many rounds occur.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tars-dev/tars/internal/approval"
	"github.com/tars-dev/tars/internal/artifact"
	"github.com/tars-dev/tars/internal/config"
	"github.com/tars-dev/tars/internal/contextload"
	"github.com/tars-dev/tars/internal/intent"
	"github.com/tars-dev/tars/internal/log"
	"github.com/tars-dev/tars/internal/report"
	"github.com/tars-dev/tars/internal/session"
)

// Options configures a new Engine. Loader is required; Store, Logger
// and Reports are optional and skipped when nil.
type Options struct {
	Project string
	Config  *config.Config
	Loader  contextload.Loader
	Store   *session.Store
	Logger  *log.Logger
	Reports *report.Writer
}

// Engine owns all session state and applies intents one at a time per
// session. Distinct sessions proceed fully concurrently; within one
// session a mutex enforces the single-writer rule.
type Engine struct {
	project string
	cfg     *config.Config
	loader  contextload.Loader
	gate    *approval.Gate
	store   *session.Store
	logger  *log.Logger
	reports *report.Writer

	mu     sync.Mutex
	states map[string]*state
}

// state is the in-memory runtime for one session.
type state struct {
	mu             sync.Mutex
	sess           *session.Session
	draft          *artifact.Artifact
	bundle         *contextload.Bundle
	clarifications []string
}

// New constructs an engine. The loader must be non-nil.
func New(opts Options) (*Engine, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("engine: context loader is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{
		project: opts.Project,
		cfg:     cfg,
		loader:  opts.Loader,
		gate:    approval.NewGate(),
		store:   opts.Store,
		logger:  opts.Logger,
		reports: opts.Reports,
		states:  make(map[string]*state),
	}, nil
}

// Apply parses one raw input against the session and advances the
// state machine. Rejections and validation misses come back as
// Response values; the returned error is reserved for infrastructure
// failures. An empty sessionID addresses the idle (no-session) state;
// a successful intake returns the new session's id in the Response.
func (e *Engine) Apply(ctx context.Context, sessionID string, raw string) (Response, error) {
	st := e.lookup(sessionID)
	if st != nil {
		st.mu.Lock()
		defer st.mu.Unlock()
	}

	snap := snapshot(st)
	in, perr := intent.Parse(raw, snap)
	if perr != nil {
		e.logEvent(log.LogEvent{
			Event:     log.EventIntentRejected,
			SessionID: sessionID,
			Phase:     string(snap.Phase),
			Reason:    perr.Error(),
		})
		return Response{
			Kind:      Rejected,
			SessionID: sessionID,
			Phase:     snap.Phase,
			Role:      session.RoleFor(snap.Phase),
			Err:       perr,
			Message:   perr.Msg,
		}, nil
	}

	switch in.Kind {
	case intent.KindStartIssue:
		return e.startIntake(ctx, artifact.KindIssueReport, in.Payload)
	case intent.KindStartFeature:
		return e.startIntake(ctx, artifact.KindFeatureReport, in.Payload)
	case intent.KindFreeText, intent.KindClarificationAnswer:
		return e.refine(st, in)
	case intent.KindPlan:
		return e.advancePlan(st)
	case intent.KindProceed:
		return e.approve(st)
	case intent.KindCompletion:
		return e.complete(st)
	}

	return Response{}, fmt.Errorf("engine: unhandled intent kind %q", in.Kind)
}

// lookup returns the runtime state for a session id, or nil for the
// idle no-session state.
func (e *Engine) lookup(id string) *state {
	if id == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[id]
}

// snapshot derives the parser's view of the session.
func snapshot(st *state) intent.Snapshot {
	if st == nil {
		return intent.Snapshot{Phase: session.PhaseIdle}
	}
	return intent.Snapshot{
		Phase:             st.sess.Phase,
		HasValidatedDraft: st.draft != nil && st.draft.Validated && !st.draft.Approved,
		ClarificationOpen: len(st.clarifications) > 0,
	}
}

// startIntake creates the session, gathers context, and opens drafting.
func (e *Engine) startIntake(ctx context.Context, kind artifact.Kind, description string) (Response, error) {
	sess, err := e.createSession(description)
	if err != nil {
		return Response{}, err
	}
	sess.Kind = string(kind)
	e.persistSession(sess)

	timeout := time.Duration(e.cfg.Context.TimeoutMs) * time.Millisecond
	bundle := contextload.Load(ctx, e.loader, e.cfg.Context.RecentChanges, timeout)

	draft := artifact.New(kind)
	switch kind {
	case artifact.KindIssueReport:
		draft.SetField("summary", description)
	case artifact.KindFeatureReport:
		draft.SetField("description", description)
	}

	st := &state{sess: sess, draft: draft, bundle: bundle}
	e.mu.Lock()
	e.states[sess.ID] = st
	e.mu.Unlock()

	e.recordTransition(sess, session.PhaseIdle, session.PhaseIntake, "start")
	e.recordMessage(sess.ID, "user", description)
	e.logEvent(log.LogEvent{
		Event:     log.EventSessionOpened,
		SessionID: sess.ID,
		Phase:     string(session.PhaseIntake),
		Kind:      string(kind),
	})
	e.logEvent(log.LogEvent{
		Event:     log.EventContextLoaded,
		SessionID: sess.ID,
		Gaps:      len(bundle.Gaps),
	})

	return Response{
		Kind:      Accepted,
		SessionID: sess.ID,
		Phase:     session.PhaseIntake,
		Role:      session.RoleArchitect,
		Message:   fmt.Sprintf("%s intake opened; drafting has begun", kind),
	}, nil
}

// refine folds free text or a clarification answer into the current
// draft and re-runs the validator. Phase never changes here except for
// the refine path out of AwaitingApproval.
func (e *Engine) refine(st *state, in intent.Intent) (Response, error) {
	if st == nil {
		return Response{
			Kind:    Accepted,
			Phase:   session.PhaseIdle,
			Role:    session.RoleArchitect,
			Message: "no session is open; start one with /issue or /feature",
		}, nil
	}

	sess := st.sess
	e.recordMessage(sess.ID, "user", in.Payload)

	switch sess.Phase {
	case session.PhaseAwaitingApproval:
		// Free text while a plan awaits approval is a refine decision:
		// the pending marker is cleared and drafting resumes.
		pending, err := e.gate.Resolve(sess.ID, approval.DecisionRefine)
		if err != nil {
			return Response{}, err
		}
		e.setPhase(st, pending.ReturnPhase, "refine")
		artifact.ApplyDraft(st.draft, in.Payload)
		if result := artifact.Validate(st.draft); result.OK {
			st.draft.Validated = true
		}
		e.logEvent(log.LogEvent{
			Event:     log.EventPlanRefined,
			SessionID: sess.ID,
			Phase:     string(sess.Phase),
		})
		return Response{
			Kind:      Accepted,
			SessionID: sess.ID,
			Phase:     sess.Phase,
			Role:      sess.Role,
			Message:   "approval withdrawn; refining the plan",
		}, nil

	case session.PhaseExecuting:
		// The approved plan is frozen; input during execution is noted
		// but changes nothing.
		return Response{
			Kind:      Accepted,
			SessionID: sess.ID,
			Phase:     sess.Phase,
			Role:      sess.Role,
			Message:   "execution in progress; the approved plan is frozen",
		}, nil
	}

	if in.Kind == intent.KindClarificationAnswer && len(st.clarifications) > 0 {
		st.clarifications = st.clarifications[1:]
	}

	questions := artifact.ApplyDraft(st.draft, in.Payload)
	st.clarifications = append(st.clarifications, questions...)

	result := artifact.Validate(st.draft)
	if !result.OK {
		e.logEvent(log.LogEvent{
			Event:     log.EventValidationFailed,
			SessionID: sess.ID,
			Phase:     string(sess.Phase),
			Missing:   result.Missing,
		})
		return Response{
			Kind:      ValidationFailed,
			SessionID: sess.ID,
			Phase:     sess.Phase,
			Role:      sess.Role,
			Missing:   result.Missing,
			Message:   fmt.Sprintf("draft incomplete; missing: %v", result.Missing),
		}, nil
	}

	st.draft.Validated = true
	e.logEvent(log.LogEvent{
		Event:     log.EventDraftRefined,
		SessionID: sess.ID,
		Phase:     string(sess.Phase),
	})
	return Response{
		Kind:      Accepted,
		SessionID: sess.ID,
		Phase:     sess.Phase,
		Role:      sess.Role,
		Message:   "draft validated and ready to advance",
	}, nil
}

// advancePlan handles the "plan" keyword: out of Intake it hands the
// validated research over to plan drafting; out of Planning it raises
// the validated plan to the approval gate.
func (e *Engine) advancePlan(st *state) (Response, error) {
	sess := st.sess

	switch sess.Phase {
	case session.PhaseIntake:
		e.writeReport(sess, st.draft, st.bundle)
		st.draft = seedPlan(st.draft)
		e.setPhase(st, session.PhasePlanning, "plan")
		e.logEvent(log.LogEvent{
			Event:     log.EventPlanRequested,
			SessionID: sess.ID,
			Phase:     string(sess.Phase),
		})
		return Response{
			Kind:      Accepted,
			SessionID: sess.ID,
			Phase:     sess.Phase,
			Role:      sess.Role,
			Message:   "research complete; drafting the plan",
		}, nil

	case session.PhasePlanning:
		pendingID, err := e.gate.RequestApproval(sess.ID, st.draft, session.PhasePlanning)
		if err != nil {
			return Response{
				Kind:      Rejected,
				SessionID: sess.ID,
				Phase:     sess.Phase,
				Role:      sess.Role,
				Err:       err,
				Message:   err.Error(),
			}, nil
		}
		e.setPhase(st, session.PhaseAwaitingApproval, "plan")
		e.logEvent(log.LogEvent{
			Event:     log.EventApprovalRequested,
			SessionID: sess.ID,
			PendingID: pendingID,
		})
		return Response{
			Kind:      ApprovalPending,
			SessionID: sess.ID,
			Phase:     sess.Phase,
			Role:      sess.Role,
			PendingID: pendingID,
			Message:   "plan complete; say proceed to approve it",
		}, nil
	}

	return Response{}, fmt.Errorf("engine: plan intent in phase %q", sess.Phase)
}

// approve resolves the pending approval and opens execution. This is
// the only path that reaches Executing.
func (e *Engine) approve(st *state) (Response, error) {
	sess := st.sess

	pending, err := e.gate.Resolve(sess.ID, approval.DecisionApprove)
	if err != nil {
		return Response{}, err
	}

	e.setPhase(st, session.PhaseExecuting, "proceed")
	e.writeReport(sess, pending.Artifact, st.bundle)
	e.persistArtifact(sess.ID, pending.Artifact)
	e.logEvent(log.LogEvent{
		Event:     log.EventPlanApproved,
		SessionID: sess.ID,
		PendingID: pending.ID,
	})

	return Response{
		Kind:      Accepted,
		SessionID: sess.ID,
		Phase:     sess.Phase,
		Role:      sess.Role,
		Message:   "plan approved; builder is executing",
	}, nil
}

// complete releases a session once execution finishes.
func (e *Engine) complete(st *state) (Response, error) {
	sess := st.sess

	e.setPhase(st, session.PhaseIdle, "done")
	sess.Status = "completed"
	e.persistSession(sess)
	e.logEvent(log.LogEvent{
		Event:     log.EventExecutionComplete,
		SessionID: sess.ID,
	})

	e.mu.Lock()
	delete(e.states, sess.ID)
	e.mu.Unlock()

	return Response{
		Kind:      Accepted,
		SessionID: sess.ID,
		Phase:     session.PhaseIdle,
		Role:      session.RoleArchitect,
		Message:   "session complete",
	}, nil
}

// Resume re-registers a persisted session after a restart. Any pending
// approval marker was in-memory only, so an AwaitingApproval session
// falls back to Planning; an Executing session resumes with a frozen
// placeholder plan so the builder can still signal completion. The
// draft restarts empty in every other phase because drafts are not
// persisted until they reach a report.
func (e *Engine) Resume(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.Status != "active" {
		return fmt.Errorf("engine: session is not resumable")
	}

	e.mu.Lock()
	if _, open := e.states[sess.ID]; open {
		e.mu.Unlock()
		return fmt.Errorf("engine: session %s is already open", sess.ID)
	}
	e.mu.Unlock()

	if sess.Phase == session.PhaseAwaitingApproval {
		sess.Phase = session.PhasePlanning
		sess.Role = session.RoleFor(sess.Phase)
		e.persistSession(sess)
	}

	var draft *artifact.Artifact
	switch sess.Phase {
	case session.PhaseIntake:
		draft = artifact.New(artifact.Kind(sess.Kind))
	case session.PhasePlanning:
		draft = artifact.New(artifact.KindPlan)
	case session.PhaseExecuting:
		draft = artifact.New(artifact.KindPlan)
		draft.Validated = true
		draft.Approved = true
	default:
		return fmt.Errorf("engine: cannot resume from phase %q", sess.Phase)
	}

	timeout := time.Duration(e.cfg.Context.TimeoutMs) * time.Millisecond
	bundle := contextload.Load(ctx, e.loader, e.cfg.Context.RecentChanges, timeout)

	e.mu.Lock()
	e.states[sess.ID] = &state{sess: sess, draft: draft, bundle: bundle}
	e.mu.Unlock()

	e.logEvent(log.LogEvent{
		Event:     log.EventSessionOpened,
		SessionID: sess.ID,
		Phase:     string(sess.Phase),
		Kind:      sess.Kind,
		Reason:    "resume",
	})
	return nil
}

// Close explicitly ends a session from any phase. The only
// state-destroying action, and it is always user-initiated.
func (e *Engine) Close(sessionID string) error {
	e.mu.Lock()
	st, ok := e.states[sessionID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("engine: no open session %s", sessionID)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if e.gate.IsPending(sessionID) {
		_, _ = e.gate.Resolve(sessionID, approval.DecisionReject)
	}
	e.setPhase(st, session.PhaseIdle, "close")
	st.sess.Status = "closed"
	e.persistSession(st.sess)
	e.logEvent(log.LogEvent{
		Event:     log.EventSessionClosed,
		SessionID: sessionID,
	})

	e.mu.Lock()
	delete(e.states, sessionID)
	e.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the session's current value, or nil if no
// such session is open.
func (e *Engine) Snapshot(sessionID string) *session.Session {
	e.mu.Lock()
	st, ok := e.states[sessionID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	copied := *st.sess
	return &copied
}

// Clarifications returns the open clarification questions for a session.
func (e *Engine) Clarifications(sessionID string) []string {
	e.mu.Lock()
	st, ok := e.states[sessionID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]string(nil), st.clarifications...)
}

// seedPlan starts a plan draft from the validated research artifact so
// the intake facts carry forward.
func seedPlan(research *artifact.Artifact) *artifact.Artifact {
	plan := artifact.New(artifact.KindPlan)
	plan.SetField("role", "builder")

	switch research.Kind {
	case artifact.KindIssueReport:
		plan.SetField("problemStatement", research.Fields["summary"])
		plan.SetField("scope", research.Fields["component"])
	case artifact.KindFeatureReport:
		plan.SetField("problemStatement", research.Fields["description"])
		plan.SetField("scope", research.Fields["component"])
	}
	return plan
}

// setPhase applies an atomic phase transition and records it.
func (e *Engine) setPhase(st *state, to session.Phase, trigger string) {
	from := st.sess.Phase
	st.sess.Phase = to
	st.sess.Role = session.RoleFor(to)
	st.sess.UpdatedAt = time.Now()
	e.recordTransition(st.sess, from, to, trigger)
	e.persistSession(st.sess)
}

// createSession builds the session value, persisting it when a store
// is configured.
func (e *Engine) createSession(task string) (*session.Session, error) {
	if e.store != nil {
		sess, err := e.store.CreateSession(e.project, task)
		if err != nil {
			return nil, fmt.Errorf("engine: creating session: %w", err)
		}
		return sess, nil
	}
	now := time.Now()
	return &session.Session{
		ID:        uuid.New().String(),
		Project:   e.project,
		Task:      task,
		Phase:     session.PhaseIntake,
		Role:      session.RoleArchitect,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Persistence and logging are best-effort: a failing store or log file
// never blocks the state machine.

func (e *Engine) persistSession(sess *session.Session) {
	if e.store == nil {
		return
	}
	_ = e.store.UpdateSession(sess)
}

func (e *Engine) recordTransition(sess *session.Session, from, to session.Phase, trigger string) {
	if e.store == nil {
		return
	}
	_ = e.store.AddTransition(sess.ID, from, to, trigger)
}

func (e *Engine) recordMessage(sessionID, role, content string) {
	if e.store == nil {
		return
	}
	_ = e.store.AddMessage(sessionID, role, content)
}

func (e *Engine) persistArtifact(sessionID string, art *artifact.Artifact) {
	if e.store == nil {
		return
	}
	_ = e.store.SaveArtifact(sessionID, string(art.Kind), report.Render(art, nil), art.Approved)
}

func (e *Engine) writeReport(sess *session.Session, art *artifact.Artifact, bundle *contextload.Bundle) {
	if e.reports == nil {
		return
	}
	_ = e.reports.Write(sess.ID, art, bundle)
}

func (e *Engine) logEvent(event log.LogEvent) {
	if e.logger == nil {
		return
	}
	_ = e.logger.Append(event)
}

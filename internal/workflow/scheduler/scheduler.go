// Package scheduler drives a batch of tool calls through validation, policy,
// confirmation, execution and output containment.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxParallel bounds concurrent executions when Config leaves it unset.
const DefaultMaxParallel = 4

// Observer receives a snapshot after every state transition. It is called
// from the goroutine driving the call, so it must be safe for concurrent use.
type Observer func(Record)

// Config holds per-batch settings.
type Config struct {
	SessionID   string
	MaxParallel int
	Observer    Observer
	Logger      *slog.Logger
}

// Scheduler runs exactly one batch. Create a new instance per batch.
type Scheduler struct {
	tools     toolRegistry
	policy    policyChecker
	approvals approvals
	container outputContainer

	sessionID string
	sem       *semaphore.Weighted
	observer  Observer
	logger    *slog.Logger

	mu        sync.Mutex
	records   []*Record
	scheduled bool
}

// New creates a scheduler with injected dependencies.
func New(tools toolRegistry, checker policyChecker, approvals approvals, container outputContainer, cfg Config) *Scheduler {
	if tools == nil {
		panic("tools is required")
	}
	if checker == nil {
		panic("checker is required")
	}
	if approvals == nil {
		panic("approvals is required")
	}
	if container == nil {
		panic("container is required")
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		tools:     tools,
		policy:    checker,
		approvals: approvals,
		container: container,
		sessionID: cfg.SessionID,
		sem:       semaphore.NewWeighted(int64(maxParallel)),
		observer:  cfg.Observer,
		logger:    logger,
	}
}

// Schedule starts every request concurrently and returns immediately.
// onComplete is called exactly once, from a separate goroutine, after every
// record is terminal. Records are in request order.
//
// The whole batch is rejected, with no record created, on an unknown tool
// name or a duplicate id. A second call returns ErrAlreadyScheduled.
func (s *Scheduler) Schedule(ctx context.Context, reqs []Request, onComplete func([]Record)) error {
	if onComplete == nil {
		return ErrNilCallback
	}

	invocables := make([]tool.Tool, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for i, req := range reqs {
		if _, dup := seen[req.ID]; dup {
			return &DuplicateCallIDError{ID: req.ID}
		}
		seen[req.ID] = struct{}{}

		t, ok := s.tools.Lookup(req.Name)
		if !ok {
			return &UnknownToolError{Name: req.Name, Available: s.tools.Names()}
		}
		invocables[i] = t
	}

	s.mu.Lock()
	if s.scheduled {
		s.mu.Unlock()
		return ErrAlreadyScheduled
	}
	s.scheduled = true
	now := time.Now()
	s.records = make([]*Record, len(reqs))
	for i, req := range reqs {
		s.records[i] = &Record{Request: req, State: StateValidating, CreatedAt: now}
	}
	s.mu.Unlock()

	s.logger.Debug("batch scheduled", "session", s.sessionID, "calls", len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(rec *Record, t tool.Tool) {
			defer wg.Done()
			s.process(ctx, rec, t)
		}(s.records[i], invocables[i])
	}

	go func() {
		wg.Wait()
		onComplete(s.Records())
	}()
	return nil
}

// Run schedules reqs and blocks until the batch is complete.
func (s *Scheduler) Run(ctx context.Context, reqs []Request) ([]Record, error) {
	done := make(chan []Record, 1)
	if err := s.Schedule(ctx, reqs, func(records []Record) { done <- records }); err != nil {
		return nil, err
	}
	return <-done, nil
}

// RunOne schedules a single request and waits for it. Any terminal state
// other than Success is returned as a *CallError alongside the record.
func (s *Scheduler) RunOne(ctx context.Context, req Request) (Record, error) {
	records, err := s.Run(ctx, []Request{req})
	if err != nil {
		return Record{}, err
	}
	rec := records[0]
	if rec.State != StateSuccess {
		return rec, &CallError{ID: rec.Request.ID, Tool: rec.Request.Name, State: rec.State, Cause: rec.Err}
	}
	return rec, nil
}

// Records returns a snapshot of every record in request order.
func (s *Scheduler) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = *rec
	}
	return out
}

// process drives one call to a terminal state.
func (s *Scheduler) process(ctx context.Context, rec *Record, t tool.Tool) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("tool call panicked", "id", rec.Request.ID, "tool", rec.Request.Name, "panic", p)
			s.finish(rec, StateError, func(r *Record) {
				r.Err = &ExecutionError{Tool: r.Request.Name, Cause: fmt.Errorf("panic: %v", p)}
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		s.finish(rec, StateCancelled, func(r *Record) { r.Err = err })
		return
	}

	inv, err := tool.Bind(t, rec.Request.Args)
	if err != nil {
		s.finish(rec, StateDenied, func(r *Record) { r.Err = err })
		return
	}
	s.update(rec, func(r *Record) { r.Description = inv.Description })

	decision := s.policy.Check(policy.Call{Name: rec.Request.Name, Args: rec.Request.Args})
	s.update(rec, func(r *Record) { r.Decision = decision })

	switch decision {
	case policy.Allow:
	case policy.AskUser:
		if !s.confirm(ctx, rec, inv) {
			return
		}
	default:
		s.finish(rec, StateDenied, func(r *Record) { r.Err = ErrPolicyDenied })
		return
	}

	if !s.transition(rec, StateScheduled, nil) {
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.finish(rec, StateCancelled, func(r *Record) { r.Err = err })
		return
	}
	defer s.sem.Release(1)

	// Cancellation may have fired while the slot was free.
	if err := ctx.Err(); err != nil {
		s.finish(rec, StateCancelled, func(r *Record) { r.Err = err })
		return
	}

	if !s.transition(rec, StateExecuting, func(r *Record) { r.StartedAt = time.Now() }) {
		return
	}

	res, execErr := inv.Run(ctx)
	if execErr != nil && ctx.Err() != nil {
		s.finish(rec, StateCancelled, func(r *Record) { r.Err = ctx.Err() })
		return
	}

	// The call has completed; its output is contained even if the batch is
	// cancelled in the meantime.
	containCtx := context.WithoutCancel(ctx)

	if execErr != nil {
		execErr = &ExecutionError{Tool: rec.Request.Name, Cause: execErr}
		artifact, err := s.container.Contain(containCtx, execErr.Error(), s.sessionID)
		s.finish(rec, StateError, func(r *Record) {
			r.Err = execErr
			if err != nil {
				r.Err = errors.Join(execErr, err)
			}
			r.Output = artifact
		})
		return
	}

	artifact, err := s.container.Contain(containCtx, res.LLMContent(), s.sessionID)
	if err != nil {
		s.finish(rec, StateError, func(r *Record) {
			r.Result = res
			r.Err = err
			r.Output = artifact
		})
		return
	}
	s.finish(rec, StateSuccess, func(r *Record) {
		r.Result = res
		r.Output = artifact
	})
}

// confirm publishes a confirmation request and waits. It reports whether
// the call may proceed; otherwise the record is already terminal.
func (s *Scheduler) confirm(ctx context.Context, rec *Record, inv *tool.Invocation) bool {
	token := confirmation.NewToken()
	if !s.transition(rec, StateAwaitingConfirmation, func(r *Record) { r.CorrelationID = token }) {
		return false
	}

	_, err := s.approvals.Await(ctx, confirmation.Request{
		CorrelationID: token,
		CallID:        rec.Request.ID,
		ToolName:      rec.Request.Name,
		Args:          rec.Request.Args,
		Description:   inv.Description,
	})
	switch {
	case err == nil:
		s.update(rec, func(r *Record) { r.Approved = true })
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.finish(rec, StateCancelled, func(r *Record) { r.Err = err })
	default:
		// Refusals, a missing approver and publish failures all deny.
		if errors.Is(err, confirmation.ErrNoApprover) {
			s.logger.Warn("no approver attached, denying call", "id", rec.Request.ID, "tool", rec.Request.Name)
		}
		s.finish(rec, StateDenied, func(r *Record) { r.Err = err })
	}
	return false
}

// transition moves rec to state unless it is already terminal.
func (s *Scheduler) transition(rec *Record, state State, mutate func(*Record)) bool {
	s.mu.Lock()
	if rec.State.Terminal() {
		s.mu.Unlock()
		return false
	}
	rec.State = state
	if mutate != nil {
		mutate(rec)
	}
	snapshot := *rec
	s.mu.Unlock()

	s.logger.Debug("tool call transition", "id", snapshot.Request.ID, "tool", snapshot.Request.Name, "state", state)
	if s.observer != nil {
		s.observer(snapshot)
	}
	return true
}

// finish moves rec to a terminal state.
func (s *Scheduler) finish(rec *Record, state State, mutate func(*Record)) {
	s.transition(rec, state, func(r *Record) {
		if mutate != nil {
			mutate(r)
		}
		r.FinishedAt = time.Now()
	})
}

// update changes fields without a state change. Terminal records are left alone.
func (s *Scheduler) update(rec *Record, mutate func(*Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !rec.State.Terminal() {
		mutate(rec)
	}
}

package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/policy"
	tea "github.com/charmbracelet/bubbletea"
)

// SessionRulePriority ranks "always allow" rules above unprioritised
// configured rules and below any explicit higher-priority rule.
const SessionRulePriority = 1

// runFunc runs an approval prompt to completion.
type runFunc func(ctx context.Context, m approvalModel) (approvalModel, error)

// Prompter answers confirmation requests by asking the user in the
// terminal, one request at a time.
type Prompter struct {
	bus      requestBus
	renderer MarkdownRenderer
	styles   Styles
	run      runFunc
	logger   *slog.Logger
	rules    ruleAdder

	queue chan confirmation.Request

	mu      sync.Mutex
	sub     confirmation.Subscription
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewPrompter creates a prompter that reads keys from in and draws on out.
// renderer and logger may be nil.
func NewPrompter(bus requestBus, renderer MarkdownRenderer, styles Styles, in io.Reader, out io.Writer, logger *slog.Logger) *Prompter {
	return newPrompter(bus, renderer, styles, programRunner(in, out), logger)
}

func newPrompter(bus requestBus, renderer MarkdownRenderer, styles Styles, run runFunc, logger *slog.Logger) *Prompter {
	if bus == nil {
		panic("bus is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Prompter{
		bus:      bus,
		renderer: renderer,
		styles:   styles,
		run:      run,
		logger:   logger,
		queue:    make(chan confirmation.Request, 64),
	}
}

func programRunner(in io.Reader, out io.Writer) runFunc {
	return func(ctx context.Context, m approvalModel) (approvalModel, error) {
		final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
		if err != nil {
			return m, err
		}
		fm, ok := final.(approvalModel)
		if !ok {
			return m, fmt.Errorf("unexpected model type %T", final)
		}
		return fm, nil
	}
}

// WithSessionRules lets "always allow" answers add an Allow rule for the
// tool to rules. Without it the answer only approves the current call.
func (p *Prompter) WithSessionRules(rules ruleAdder) *Prompter {
	p.rules = rules
	return p
}

// Start subscribes to requests and serves them until ctx is done or Stop
// is called. Calling Start twice is a no-op.
func (p *Prompter) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stopped = make(chan struct{})
	p.sub = p.bus.SubscribeRequests(func(req confirmation.Request) {
		select {
		case p.queue <- req:
		case <-ctx.Done():
		}
	})
	go p.serve(ctx, p.stopped)
}

// Stop unsubscribes and waits for the prompt in progress to finish.
func (p *Prompter) Stop() {
	p.mu.Lock()
	cancel, stopped := p.cancel, p.stopped
	p.cancel = nil
	p.bus.Unsubscribe(p.sub)
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-stopped
	}
}

func (p *Prompter) serve(ctx context.Context, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.queue:
			if !req.Pending() {
				p.logger.Debug("skipping confirmation nobody is waiting for", "tool", req.ToolName, "call", req.CallID)
				continue
			}
			resp, err := p.askWhilePending(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !req.Pending() {
					continue
				}
				p.logger.Error("approval prompt failed", "tool", req.ToolName, "error", err)
			}
			if err := p.bus.Publish(resp); err != nil {
				p.logger.Error("publish approval response", "tool", req.ToolName, "error", err)
			}
		}
	}
}

// askWhilePending shows the prompt and dismisses it if the requester stops
// waiting first.
func (p *Prompter) askWhilePending(ctx context.Context, req confirmation.Request) (confirmation.Response, error) {
	if req.Done == nil {
		return p.ask(ctx, req)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-req.Done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return p.ask(ctx, req)
}

// ask shows the prompt. On failure the returned response refuses.
func (p *Prompter) ask(ctx context.Context, req confirmation.Request) (confirmation.Response, error) {
	m := newApprovalModel(req, renderPreview(p.renderer, req), p.styles)
	final, err := p.run(ctx, m)
	if err != nil {
		return confirmation.Refuse(req, "approval prompt failed"), err
	}
	if final.always && p.rules != nil {
		rule := policy.Rule{ToolName: req.ToolName, Decision: policy.Allow, Priority: SessionRulePriority}
		if err := p.rules.AddRule(rule); err != nil {
			p.logger.Warn("could not add session rule", "tool", req.ToolName, "error", err)
		} else {
			p.logger.Info("tool allowed for the rest of the session", "tool", req.ToolName)
		}
	}
	return final.response(), nil
}

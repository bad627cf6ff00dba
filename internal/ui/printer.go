package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Cyclone1070/toolgate/internal/workflow"
	"github.com/Cyclone1070/toolgate/internal/workflow/scheduler"
	"github.com/fatih/color"
)

// Printer writes workflow events as status lines.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	text    func(a ...any) string
	muted   func(a ...any) string
	success func(a ...any) string
	warn    func(a ...any) string
	fail    func(a ...any) string
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:     out,
		text:    color.New(color.Reset).SprintFunc(),
		muted:   color.New(color.Faint).SprintFunc(),
		success: color.New(color.FgGreen).SprintFunc(),
		warn:    color.New(color.FgYellow).SprintFunc(),
		fail:    color.New(color.FgRed).SprintFunc(),
	}
}

// Drain prints events until the channel is closed.
func (p *Printer) Drain(events <-chan workflow.Event) {
	for ev := range events {
		p.Print(ev)
	}
}

// Print writes one event. Non-terminal tool states other than Executing
// and AwaitingConfirmation are not shown.
func (p *Printer) Print(ev workflow.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		fmt.Fprintln(p.out, p.muted("… thinking"))
	case workflow.TextEvent:
		fmt.Fprintln(p.out, p.text(e.Text))
	case workflow.UnknownToolEvent:
		fmt.Fprintln(p.out, p.warn(fmt.Sprintf("? %s is not a known tool", e.ToolName)))
	case workflow.ToolStateEvent:
		p.printRecord(e.Record)
	case workflow.DoneEvent:
		if e.Err != nil {
			fmt.Fprintln(p.out, p.fail("✘ "+e.Err.Error()))
		}
	}
}

func (p *Printer) printRecord(rec scheduler.Record) {
	label := rec.Description
	if label == "" {
		label = rec.Request.Name
	}

	switch rec.State {
	case scheduler.StateAwaitingConfirmation:
		fmt.Fprintln(p.out, p.muted("⋯ waiting for approval: "+label))
	case scheduler.StateExecuting:
		fmt.Fprintln(p.out, p.muted("▸ "+label))
	case scheduler.StateSuccess:
		line := fmt.Sprintf("✔ %s (%s)", label, rec.Duration().Round(time.Millisecond))
		if rec.Output.Persisted() {
			line += " [output saved to " + rec.Output.Reference + "]"
		}
		fmt.Fprintln(p.out, p.success(line))
	case scheduler.StateError:
		fmt.Fprintln(p.out, p.fail(fmt.Sprintf("✘ %s: %v", label, rec.Err)))
	case scheduler.StateDenied:
		fmt.Fprintln(p.out, p.warn(fmt.Sprintf("⊘ %s: %v", label, rec.Err)))
	case scheduler.StateCancelled:
		fmt.Fprintln(p.out, p.warn("⊘ "+label+" cancelled"))
	}
}

// Package session aggregates per-session tool metrics and writes the
// session summary file.
package session

import (
	"sync"

	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/workflow/scheduler"
	"github.com/google/uuid"
)

// Decisions counts how calls were let through or stopped.
type Decisions struct {
	Accept     int `json:"accept"`
	Reject     int `json:"reject"`
	AutoAccept int `json:"auto_accept"`
}

func (d *Decisions) add(o Decisions) {
	d.Accept += o.Accept
	d.Reject += o.Reject
	d.AutoAccept += o.AutoAccept
}

// ToolStats is the tally for one tool name.
type ToolStats struct {
	Count      int       `json:"count"`
	Success    int       `json:"success"`
	Fail       int       `json:"fail"`
	DurationMs int64     `json:"durationMs"`
	Decisions  Decisions `json:"decisions"`
}

// ToolMetrics is the tally across all tools.
type ToolMetrics struct {
	TotalCalls      int                   `json:"totalCalls"`
	TotalSuccess    int                   `json:"totalSuccess"`
	TotalFail       int                   `json:"totalFail"`
	TotalDurationMs int64                 `json:"totalDurationMs"`
	TotalDecisions  Decisions             `json:"totalDecisions"`
	ByName          map[string]*ToolStats `json:"byName"`
}

// Metrics accumulates terminal records. It is safe for concurrent use.
type Metrics struct {
	mu    sync.Mutex
	tools ToolMetrics
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func NewMetrics() *Metrics {
	return &Metrics{tools: ToolMetrics{ByName: make(map[string]*ToolStats)}}
}

// Add tallies a terminal record. Non-terminal records are ignored.
func (m *Metrics) Add(rec scheduler.Record) {
	if !rec.State.Terminal() {
		return
	}

	var success, fail int
	if rec.State == scheduler.StateSuccess {
		success = 1
	} else {
		fail = 1
	}
	decision := classify(rec)
	durationMs := rec.Duration().Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.tools.ByName[rec.Request.Name]
	if !ok {
		stats = &ToolStats{}
		m.tools.ByName[rec.Request.Name] = stats
	}
	stats.Count++
	stats.Success += success
	stats.Fail += fail
	stats.DurationMs += durationMs
	stats.Decisions.add(decision)

	m.tools.TotalCalls++
	m.tools.TotalSuccess += success
	m.tools.TotalFail += fail
	m.tools.TotalDurationMs += durationMs
	m.tools.TotalDecisions.add(decision)
}

// classify maps a record to at most one decision count. Calls rejected
// before the policy ran, or cancelled while waiting, count as neither.
func classify(rec scheduler.Record) Decisions {
	switch {
	case rec.Decision == policy.Allow:
		return Decisions{AutoAccept: 1}
	case rec.Approved:
		return Decisions{Accept: 1}
	case rec.State == scheduler.StateDenied && rec.Decision != "":
		return Decisions{Reject: 1}
	}
	return Decisions{}
}

// Snapshot returns a deep copy of the current tallies.
func (m *Metrics) Snapshot() ToolMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.tools
	out.ByName = make(map[string]*ToolStats, len(m.tools.ByName))
	for name, stats := range m.tools.ByName {
		copied := *stats
		out.ByName[name] = &copied
	}
	return out
}

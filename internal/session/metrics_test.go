package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/workflow/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, state scheduler.State, decision policy.Decision, approved bool) scheduler.Record {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := scheduler.Record{
		Request:    scheduler.Request{ID: name + string(state), Name: name},
		State:      state,
		Decision:   decision,
		Approved:   approved,
		FinishedAt: start.Add(250 * time.Millisecond),
	}
	if state == scheduler.StateSuccess || state == scheduler.StateError {
		rec.StartedAt = start
	}
	return rec
}

func TestMetrics_Add(t *testing.T) {
	m := NewMetrics()

	m.Add(record("read_file", scheduler.StateSuccess, policy.Allow, false))
	m.Add(record("run_shell", scheduler.StateSuccess, policy.AskUser, true))
	m.Add(record("run_shell", scheduler.StateError, policy.AskUser, true))
	denied := record("run_shell", scheduler.StateDenied, policy.AskUser, false)
	denied.Err = &confirmation.RefusedError{ToolName: "run_shell"}
	m.Add(denied)
	m.Add(record("write_file", scheduler.StateDenied, policy.Deny, false))
	// rejected by argument validation before the policy ran
	m.Add(record("write_file", scheduler.StateDenied, "", false))
	m.Add(record("read_file", scheduler.StateCancelled, policy.AskUser, false))
	m.Add(record("read_file", scheduler.StateExecuting, policy.Allow, false))

	snap := m.Snapshot()
	assert.Equal(t, 7, snap.TotalCalls)
	assert.Equal(t, 2, snap.TotalSuccess)
	assert.Equal(t, 5, snap.TotalFail)
	assert.Equal(t, int64(750), snap.TotalDurationMs)
	assert.Equal(t, Decisions{Accept: 2, Reject: 2, AutoAccept: 1}, snap.TotalDecisions)

	shell := snap.ByName["run_shell"]
	require.NotNil(t, shell)
	assert.Equal(t, ToolStats{Count: 3, Success: 1, Fail: 2, DurationMs: 500, Decisions: Decisions{Accept: 2, Reject: 1}}, *shell)
	assert.Equal(t, 2, snap.ByName["read_file"].Count)
	assert.Equal(t, 1, snap.ByName["write_file"].Decisions.Reject)
}

func TestMetrics_SnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.Add(record("read_file", scheduler.StateSuccess, policy.Allow, false))

	snap := m.Snapshot()
	snap.ByName["read_file"].Count = 99

	assert.Equal(t, 1, m.Snapshot().ByName["read_file"].Count)
}

func TestMetrics_ConcurrentAdd(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Add(record("read_file", scheduler.StateSuccess, policy.Allow, false))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Snapshot().TotalCalls)
}

func TestWriteSummary(t *testing.T) {
	m := NewMetrics()
	m.Add(record("read_file", scheduler.StateSuccess, policy.Allow, false))
	m.Add(record("list_directory", scheduler.StateDenied, policy.Deny, false))
	path := filepath.Join(t.TempDir(), "nested", "summary.json")

	require.NoError(t, WriteSummary(path, "sess-1", m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "sess-1", doc["sessionId"])

	tools := doc["sessionMetrics"].(map[string]any)["tools"].(map[string]any)
	assert.EqualValues(t, 2, tools["totalCalls"])
	byName := tools["byName"].(map[string]any)
	assert.EqualValues(t, 1, byName["read_file"].(map[string]any)["success"])
	assert.EqualValues(t, 1, byName["list_directory"].(map[string]any)["count"])
	decisions := tools["totalDecisions"].(map[string]any)
	assert.EqualValues(t, 1, decisions["auto_accept"])
	assert.EqualValues(t, 1, decisions["reject"])
}

func TestWriteSummary_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteSummary(filepath.Join(blocker, "summary.json"), "s", NewMetrics())

	assert.ErrorContains(t, err, "create summary directory")
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}

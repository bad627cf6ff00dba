package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Summary is the document written by --session-summary.
type Summary struct {
	SessionID      string         `json:"sessionId"`
	SessionMetrics SessionMetrics `json:"sessionMetrics"`
}

type SessionMetrics struct {
	Tools ToolMetrics `json:"tools"`
}

// NewSummary captures the current state of m.
func NewSummary(sessionID string, m *Metrics) Summary {
	return Summary{
		SessionID:      sessionID,
		SessionMetrics: SessionMetrics{Tools: m.Snapshot()},
	}
}

// WriteSummary writes the summary as indented JSON, creating parent
// directories as needed.
func WriteSummary(path, sessionID string, m *Metrics) error {
	data, err := json.MarshalIndent(NewSummary(sessionID, m), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write session summary: %w", err)
	}
	return nil
}

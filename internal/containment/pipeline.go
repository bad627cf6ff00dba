// Package containment keeps oversized tool output out of the model's context.
// Output at or below the threshold passes through untouched; anything larger
// is saved to disk and replaced by a summary plus a reference to the file.
package containment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the containment boundary in characters.
const DefaultThreshold = 2000

// minSummaryChars is the least room a summary gets next to its note.
const minSummaryChars = 20

const shortNote = "\n\n[Summarized, full output saved]"

// Artifact is what goes back to the model for one tool output.
// Reference is empty when the output was small enough to pass through.
type Artifact struct {
	Text      string
	Reference string
}

// Persisted reports whether the full output was saved to a side file.
func (a Artifact) Persisted() bool {
	return a.Reference != ""
}

// Config holds pipeline limits.
type Config struct {
	// Threshold in characters (runes). Zero means DefaultThreshold.
	Threshold int
	// SummaryMaxTokens is passed to the summarizer. Zero means no explicit budget.
	SummaryMaxTokens int
	Logger           *slog.Logger
}

// Pipeline applies containment to tool output.
type Pipeline struct {
	threshold  int
	maxTokens  int
	store      artifactStore
	summarizer Summarizer
	logger     *slog.Logger
}

// NewPipeline creates a pipeline. store and summarizer are required.
func NewPipeline(cfg Config, store artifactStore, summarizer Summarizer) *Pipeline {
	if store == nil {
		panic("store is required")
	}
	if summarizer == nil {
		panic("summarizer is required")
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		threshold:  threshold,
		maxTokens:  cfg.SummaryMaxTokens,
		store:      store,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Threshold returns the active boundary in characters.
func (p *Pipeline) Threshold() int {
	return p.threshold
}

// Contain returns output unchanged when it fits the threshold. Otherwise it
// persists the full output first, then summarizes it.
//
// Errors:
//   - *PersistError when the output could not be saved
//   - *SummaryError when summarization failed; the output is already on disk
func (p *Pipeline) Contain(ctx context.Context, output, sessionID string) (Artifact, error) {
	size := utf8.RuneCountInString(output)
	if size <= p.threshold {
		return Artifact{Text: output}, nil
	}

	ref, err := p.store.Put(ctx, sessionID, output)
	if err != nil {
		return Artifact{}, &PersistError{SessionID: sessionID, Cause: err}
	}
	p.logger.Debug("tool output persisted", "session", sessionID, "chars", size, "reference", ref)

	summary, err := p.summarizer.Summarize(ctx, output, p.maxTokens)
	if err != nil {
		return Artifact{Reference: ref}, &SummaryError{Reference: ref, Cause: err}
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return Artifact{Reference: ref}, &SummaryError{Reference: ref, Cause: ErrEmptySummary}
	}

	// Prefer the note carrying the reference; drop the path when it would
	// crowd the summary out of a small threshold.
	for _, note := range []string{
		fmt.Sprintf("\n\n[Output was %d characters and has been summarized. Full output saved to %s]", size, ref),
		shortNote,
	} {
		budget := p.threshold - utf8.RuneCountInString(note)
		if budget < minSummaryChars {
			continue
		}
		return Artifact{Text: truncateRunes(summary, budget) + note, Reference: ref}, nil
	}
	return Artifact{Reference: ref}, &SummaryError{Reference: ref, Cause: ErrThresholdTooSmall}
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

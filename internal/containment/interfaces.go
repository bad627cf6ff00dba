package containment

import "context"

// Summarizer condenses text. maxTokens bounds the result; zero leaves the
// bound to the implementation.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens int) (string, error)
}

// artifactStore defines the persistence needed by Pipeline.
type artifactStore interface {
	Put(ctx context.Context, sessionID, data string) (string, error)
}

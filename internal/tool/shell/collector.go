package shell

import (
	"bytes"
	"sync"

	"github.com/Cyclone1070/toolgate/internal/tool/content"
)

// binarySampleSize is how many leading bytes are checked for binary output.
const binarySampleSize = 8000

// Collector captures command output with a size limit and binary detection.
// It is safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	maxBytes  int64
	truncated bool
	binary    bool
	checked   int
}

// NewCollector creates a collector that keeps at most maxBytes.
func NewCollector(maxBytes int64) *Collector {
	return &Collector{maxBytes: maxBytes}
}

// Write always reports len(p) so the producing process is never blocked by
// a full collector.
func (c *Collector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.binary {
		return len(p), nil
	}

	if c.checked < binarySampleSize {
		sample := p[:min(len(p), binarySampleSize-c.checked)]
		if c.checked == 0 && content.IsBinaryContent(sample) || c.checked > 0 && bytes.IndexByte(sample, 0) != -1 {
			c.binary = true
			c.truncated = true
			return len(p), nil
		}
		c.checked += len(sample)
	}

	remaining := c.maxBytes - int64(c.buf.Len())
	if remaining <= 0 {
		c.truncated = true
		return len(p), nil
	}
	chunk := p
	if int64(len(chunk)) > remaining {
		chunk = chunk[:remaining]
		c.truncated = true
	}
	c.buf.Write(chunk)
	return len(p), nil
}

// String returns the collected output, or a placeholder for binary output.
func (c *Collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.binary {
		return "[Binary Content]"
	}
	return c.buf.String()
}

// Truncated reports whether output was dropped.
func (c *Collector) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

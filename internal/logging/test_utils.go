// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TestLogCapture is a thread-safe log writer for test assertions
type TestLogCapture struct {
	mu      sync.RWMutex
	Entries []string
	tee     io.Writer
}

func NewTestLogCapture() *TestLogCapture {
	return &TestLogCapture{
		Entries: make([]string, 0),
	}
}

// NewTestLogCaptureTee also forwards every entry to w, e.g. os.Stderr while debugging a test
func NewTestLogCaptureTee(w io.Writer) *TestLogCapture {
	return &TestLogCapture{
		Entries: make([]string, 0),
		tee:     w,
	}
}

// Install makes the capture the default slog destination
func (c *TestLogCapture) Install() {
	slog.SetDefault(slog.New(slog.NewTextHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func (c *TestLogCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries = append(c.Entries, string(p))
	if c.tee != nil {
		_, _ = c.tee.Write(p)
	}
	return len(p), nil
}

// ContainsAll returns true if all substrings are found in the log entries
func (c *TestLogCapture) ContainsAll(substrs ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, substr := range substrs {
		found := false
		for _, entry := range c.Entries {
			if strings.Contains(entry, substr) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetEntries returns a copy of all log entries
func (c *TestLogCapture) GetEntries() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]string, len(c.Entries))
	copy(entries, c.Entries)
	return entries
}

// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemorySink implements zapcore.WriteSyncer and keeps the most recent
// parsed entries in memory, dropping the oldest once capacity is reached.
type MemorySink struct {
	mu       sync.Mutex
	entries  []LogEntry
	capacity int
	dropped  int
	closed   bool
}

// NewMemorySink creates a sink holding up to capacity entries.
func NewMemorySink(capacity int) *MemorySink {
	if capacity < 1 {
		capacity = 1
	}
	return &MemorySink{capacity: capacity}
}

// Write parses the JSON line produced by zap and stores it as a LogEntry.
func (s *MemorySink) Write(p []byte) (int, error) {
	entry, err := parseEntry(p)
	if err != nil {
		// Unparseable lines are swallowed so logging never fails the caller.
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("write to closed memory sink")
	}
	if len(s.entries) == s.capacity {
		s.entries = s.entries[1:]
		s.dropped++
	}
	s.entries = append(s.entries, entry)
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. No-op for the memory sink.
func (s *MemorySink) Sync() error {
	return nil
}

// Close rejects further writes. Stored entries stay readable.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Entries returns a copy of the stored entries, oldest first.
func (s *MemorySink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Drain returns the stored entries and forgets them.
func (s *MemorySink) Drain() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.entries
	s.entries = nil
	return entries
}

// Dropped reports how many entries were discarded for lack of capacity.
func (s *MemorySink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func parseEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    make(map[string]any),
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
		delete(raw, "msg")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = ParseLevel(level)
		delete(raw, "level")
	}
	if logger, ok := raw["logger"].(string); ok {
		entry.Scope = logger
		delete(raw, "logger")
	}
	if ts, ok := raw["ts"].(float64); ok {
		sec := int64(ts)
		nsec := int64((ts - float64(sec)) * 1e9)
		entry.Timestamp = time.Unix(sec, nsec)
		delete(raw, "ts")
	}

	delete(raw, "caller")
	delete(raw, "stacktrace")

	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}

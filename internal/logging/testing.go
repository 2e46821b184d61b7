// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a LoggerProvider for tests. Entries at every level are
// kept in memory only, so assertions can inspect what a component logged.
type TestLogManager struct {
	sink    *MemorySink
	baseZap *zap.Logger
	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a TestLogManager keeping up to capacity entries.
func NewTestLogManager(capacity int) *TestLogManager {
	sink := NewMemorySink(capacity)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.EpochTimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zapcore.DebugLevel)
	return &TestLogManager{
		sink:    sink,
		baseZap: zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns the logger for a scope.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScopedLogger(m.baseZap.Named(scope), zapcore.DebugLevel, scope)
	m.loggers[scope] = logger
	return logger
}

// Entries returns every entry logged so far.
func (m *TestLogManager) Entries() []LogEntry {
	return m.sink.Entries()
}

// Drain returns every entry logged since the previous Drain.
func (m *TestLogManager) Drain() []LogEntry {
	return m.sink.Drain()
}

// WithMessage returns the logged entries whose message is msg.
func (m *TestLogManager) WithMessage(msg string) []LogEntry {
	var matched []LogEntry
	for _, e := range m.sink.Entries() {
		if e.Message == msg {
			matched = append(matched, e)
		}
	}
	return matched
}

// Close stops accepting entries.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}

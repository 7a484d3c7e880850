package utils

import (
	"fmt"
	"sync"
)

// MockLogger records every call so tests can assert on what was logged.
type MockLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	level    LogLevel
}

// LogMessage is one recorded log call.
type LogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewMockLogger returns a MockLogger recording at debug verbosity.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []LogMessage{},
		level:    LogLevelDebug,
	}
}

func (m *MockLogger) record(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, LogMessage{
		Level:   level,
		Message: msg,
		Args:    args,
	})
}

func (m *MockLogger) Debug(msg string, args ...any) {
	if m.threshold(LogLevelDebug) {
		m.record("DEBUG", msg, args)
	}
}

func (m *MockLogger) Info(msg string, args ...any) {
	if m.threshold(LogLevelInfo) {
		m.record("INFO", msg, args)
	}
}

func (m *MockLogger) Warn(msg string, args ...any) {
	if m.threshold(LogLevelWarn) {
		m.record("WARN", msg, args)
	}
}

func (m *MockLogger) Error(msg string, args ...any) {
	if m.threshold(LogLevelError) {
		m.record("ERROR", msg, args)
	}
}

func (m *MockLogger) threshold(level LogLevel) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level >= level
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// GetMessages returns a copy of everything recorded so far.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogMessage(nil), m.messages...)
}

// Clear discards the recorded messages.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = []LogMessage{}
}

// HasMessage reports whether a call with exactly this message text was logged.
func (m *MockLogger) HasMessage(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// String renders the recorded messages one per line.
func (m *MockLogger) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out string
	for _, msg := range m.messages {
		out += fmt.Sprintf("[%s] %s %v\n", msg.Level, msg.Message, msg.Args)
	}
	return out
}

package testutil

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/redraw/internal/ports"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   ports.Level
	Message string
	Fields  []ports.Field
}

// Field returns the value of the named field.
func (e LogEntry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// RecordingLogger captures log entries in memory.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []ports.Field
	level   ports.Level
}

// NewRecordingLogger creates a logger that keeps every entry.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
		level:   ports.LevelDebug,
	}
}

// Entries returns the captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), *l.entries...)
}

// Messages returns the captured messages at the given level.
func (l *RecordingLogger) Messages(level ports.Level) []string {
	out := make([]string, 0)
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *RecordingLogger) log(level ports.Level, msg string, fields []ports.Field) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	all := append(append([]ports.Field(nil), l.fields...), fields...)
	*l.entries = append(*l.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

// Debug implements ports.Logger.
func (l *RecordingLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelDebug, msg, fields)
}

// Info implements ports.Logger.
func (l *RecordingLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelInfo, msg, fields)
}

// Warn implements ports.Logger.
func (l *RecordingLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelWarn, msg, fields)
}

// Error implements ports.Logger.
func (l *RecordingLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelError, msg, fields)
}

// With implements ports.Logger. The returned logger shares the entry log.
func (l *RecordingLogger) With(fields ...ports.Field) ports.Logger {
	return &RecordingLogger{
		mu:      l.mu,
		entries: l.entries,
		fields:  append(append([]ports.Field(nil), l.fields...), fields...),
		level:   l.level,
	}
}

// Level implements ports.Logger.
func (l *RecordingLogger) Level() ports.Level {
	return l.level
}

// SetLevel implements ports.Logger.
func (l *RecordingLogger) SetLevel(level ports.Level) {
	l.level = level
}

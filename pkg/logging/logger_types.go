package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrUnknownLevel is returned by ParseLevel for names it does not recognise.
var ErrUnknownLevel = errors.New("logging: unknown level")

// Level orders log severities; a logger drops lines below its level.
type Level int32

const (
	// DebugLevel is used for per-route and per-branch traces
	DebugLevel Level = iota
	InfoLevel
	// WarnLevel marks degraded but usable results, such as a branch shortfall
	WarnLevel
	// ErrorLevel marks failed instances or trials
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a case-insensitive level name to a Level. The empty string
// is InfoLevel and "warning" is accepted for WarnLevel.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "":
		return InfoLevel, nil
	case "WARNING":
		return WarnLevel, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return InfoLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Field is one structured key/value pair attached to a line.
type Field struct {
	Key   string
	Value any
}

// Logger is implemented by JSONLogger and NopLogger. Library packages accept
// it through options and fall back to NewNopLogger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child that prepends fields to every line.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// sink is shared by a JSONLogger and all of its children, so one SetLevel
// reaches the whole tree and lines from workers never interleave.
type sink struct {
	mu    sync.Mutex
	w     io.Writer
	level atomic.Int32
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	out    *sink
	fields []Field
}

// line is the encoded form of one log call.
type line struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return ErrorLevel }

// NewNopLogger returns the logger library packages default to.
func NewNopLogger() Logger { return NopLogger{} }

// TimedOperation logs an operation together with how long it took.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// Package logging provides the structured JSON logger used across ftroute.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// NewJSONLogger returns a logger writing to w at the given level.
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	out := &sink{w: w}
	out.level.Store(int32(level))
	return &JSONLogger{out: out}
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if level < l.GetLevel() {
		return
	}

	entry := line{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		data = fmt.Appendf(nil, `{"level":"ERROR","msg":"unencodable log line","cause":%q}`, err.Error())
	}
	data = append(data, '\n')

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_, _ = l.out.w.Write(data)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a child sharing the parent's writer and level.
func (l *JSONLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &JSONLogger{out: l.out, fields: merged}
}

// SetLevel changes the level of this logger, its parent and all children.
func (l *JSONLogger) SetLevel(level Level) { l.out.level.Store(int32(level)) }

func (l *JSONLogger) GetLevel() Level { return Level(l.out.level.Load()) }

// StartTimer begins timing an operation. Nothing is logged until End.
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

// End logs at INFO and returns the elapsed time.
func (t *TimedOperation) End(fields ...Field) time.Duration {
	return t.EndWithLevel(InfoLevel, fields...)
}

// EndWithLevel logs at level with a latency field appended.
func (t *TimedOperation) EndWithLevel(level Level, fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	all := make([]Field, 0, len(t.fields)+len(fields)+1)
	all = append(append(all, t.fields...), fields...)
	all = append(all, Latency(elapsed))

	emit := t.logger.Info
	switch level {
	case DebugLevel:
		emit = t.logger.Debug
	case WarnLevel:
		emit = t.logger.Warn
	case ErrorLevel:
		emit = t.logger.Error
	}
	emit(t.msg, all...)
	return elapsed
}

func (t *TimedOperation) EndError(err error) time.Duration {
	return t.EndWithLevel(ErrorLevel, Error(err))
}

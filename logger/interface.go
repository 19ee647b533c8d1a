// Package logger defines the structured logging contract shared by the backend
// client, the credential provider and the session stores, together with a
// zerolog implementation that masks credentials before they reach the output.
package logger

import "time"

// Logger is the structured logger used across the module.
// Every component receives one at construction time; none of them log through globals.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	Fatal() LogEvent
	WithContext(ctx any) Logger
	WithFields(fields map[string]any) Logger
}

// LogEvent is a log entry under construction. Field methods return the event so
// calls can be chained; Msg or Msgf emits it.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Uint64(key string, value uint64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}

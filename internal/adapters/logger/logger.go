// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/dh/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// This matches the Message() method provided by zerr.Error (go.trai.ch/zerr v0.3.0+).
// If zerr's API changes, errors will gracefully fall back to standard error handling.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog. Every record is prefixed
// with the invoking tool's name so that interleaved output of a helper
// sequence stays traceable.
type Logger struct {
	logger *slog.Logger
	tool   string

	mu     sync.Mutex
	warned map[string]struct{}
}

// New creates a new Logger writing to stderr. The tool name is derived from
// the process name; verbosity honours DH_VERBOSE and DH_QUIET.
func New() ports.Logger {
	return NewWithOptions(os.Stderr, filepath.Base(os.Args[0]))
}

// NewWithOptions creates a Logger with an explicit writer and tool name.
// Used by tests and by tools that rename themselves.
func NewWithOptions(w io.Writer, tool string) ports.Logger {
	level := slog.LevelInfo
	if os.Getenv("DH_VERBOSE") != "" {
		level = slog.LevelDebug
	}
	if os.Getenv("DH_QUIET") != "" {
		level = slog.LevelWarn
	}

	handler := NewPrettyHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
		tool:   tool,
		warned: make(map[string]struct{}),
	}
}

// Debug logs a message shown only in verbose mode.
func (l *Logger) Debug(msg string) {
	l.logger.Debug(l.prefixed(msg))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.logger.Info(l.prefixed(msg))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.logger.Warn(l.prefixed(msg))
}

// WarnOnce logs a warning at most once per key.
func (l *Logger) WarnOnce(key, msg string) {
	l.mu.Lock()
	_, seen := l.warned[key]
	if !seen {
		l.warned[key] = struct{}{}
	}
	l.mu.Unlock()

	if !seen {
		l.Warn(msg)
	}
}

// Error logs an error. zerr chains are rendered hierarchically with their
// causes; other errors fall back to Error().
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	// Collect messages by traversing the error chain programmatically
	var messages []string
	current := err

	for current != nil {
		if m, ok := current.(messager); ok {
			// zerr error: get raw message without chain
			messages = append(messages, m.Message())
			current = errors.Unwrap(current)
		} else {
			// Standard error: append full Error() and stop
			messages = append(messages, current.Error())
			break
		}
	}

	// Format the collected messages hierarchically
	var formattedLines []string

	for i, msg := range messages {
		lines := strings.Split(msg, "\n")

		if i == 0 {
			formattedLines = append(formattedLines, l.tool+": error: "+lines[0])
			for _, line := range lines[1:] {
				formattedLines = append(formattedLines, "       "+line)
			}
		} else {
			if i == 1 {
				formattedLines = append(formattedLines, "", "  Caused by:")
			}
			formattedLines = append(formattedLines, "    - "+lines[0])
			for _, line := range lines[1:] {
				formattedLines = append(formattedLines, "      "+line)
			}
		}
	}

	l.logger.Error(strings.Join(formattedLines, "\n"))
}

func (l *Logger) prefixed(msg string) string {
	if l.tool == "" {
		return msg
	}
	return l.tool + ": " + msg
}

// Package logging builds the structured logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog.Logger tagged with the id of the current run.
type Logger struct {
	*slog.Logger
	RunID   string
	LogFile string

	file *lumberjack.Logger
}

// New creates a logger writing text records to stderr and, when file is not
// empty, to a rotated log file as well. An unknown level falls back to info.
func New(level, file string) *Logger {
	var w io.Writer = os.Stderr
	var lj *lumberjack.Logger
	if file != "" {
		lj = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    16, // MB
			MaxBackups: 3,
		}
		w = io.MultiWriter(os.Stderr, lj)
	}

	l := newLogger(w, level)
	l.LogFile = file
	l.file = lj
	return l
}

func newLogger(w io.Writer, level string) *Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: invalid log level, using info\n", level)
	}

	runID := uuid.NewString()
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		Logger: slog.New(h).With(slog.String("run", runID)),
		RunID:  runID,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string is info.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

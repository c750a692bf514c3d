// Package logging sets up the zerolog logger. The TUI owns the terminal, so
// logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration"
	FieldRoute      = "route"
	FieldFromRoute  = "from"
	FieldToRoute    = "to"
	FieldCommand    = "command"
)

// Components defines standard component names
const (
	ComponentCLI     = "cli"
	ComponentTUI     = "tui"
	ComponentClient  = "client"
	ComponentSession = "session"
)

// New returns a logger writing JSON lines to w at level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Open appends to the log file at path, creating its directory, and returns
// the logger with a closer for the file.
func Open(path string, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging.Open: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging.Open: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return New(f, level), f, nil
}

// Component tags l with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}

// ABOUTME: Leveled structured logger shared by the CLI, HTTP server and MCP server.
// ABOUTME: Wraps charmbracelet/log with the nutrition prefix and level parsing.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured or the level is invalid.
const DefaultLevel = "info"

// New returns a logger writing to w at the given level. An unknown level
// falls back to info. A nil writer means stderr.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "nutrition",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

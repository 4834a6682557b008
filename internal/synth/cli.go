package synth

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/volley/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging routes logs to stderr and a log file. If logFile is empty, a
// timestamped filename is generated. Stdout stays free for session output.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "synth_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stderr, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the synth tool.
func ShowHelp() {
	os.Stdout.WriteString(`Volley Synthetic Session Tool
=============================

Generates deterministic synthetic pose sessions with scripted strokes and
optionally runs them through a volley server.

Usage:
  go run ./cmd/synth [options]

Options:
  -mode string
        stdout, submit (async API) or analyze (sync API) (default "stdout")
  -url string
        Base URL of the service (default "http://localhost:9080")
  -sessions int
        Number of sessions to generate (default 10)
  -rallies int
        Rallies per session (default 5)
  -fps float
        Frame rate of generated sessions (default 30)
  -noise float
        Positional jitter std dev (default 0)
  -seed uint
        Base random seed (default 1)
  -left
        Generate a left-handed player
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Status polling interval in submit mode (default 200ms)
  -output string
        Output file for generated sessions (default: stdout)
  -log string
        Log file for run output (default: synth_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Write three sessions to a file
  go run ./cmd/synth -sessions 3 -output sessions.json

  # Run 100 sessions through the async API
  go run ./cmd/synth -mode submit -sessions 100 -workers 16
`)
}

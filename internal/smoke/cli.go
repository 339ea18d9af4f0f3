package smoke

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/churn/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger on stdout and, when logFile is
// set, a copy in that file. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	out := io.Writer(os.Stdout)
	closeFn := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Churn Smoke Tool
================

Submits randomly generated, valid customer forms to a running churn service
and checks every answer for consistency.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of submissions to generate (default 500)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write every case and answer to this JSON file
  -log string
        Also write the log to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -requests 2000 -workers 16
  go run ./cmd/smoke -url http://localhost:8080 -output results.json
`)
}

package drill

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/shopfloor/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "drill_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the drill tool.
func ShowHelp() {
	os.Stdout.WriteString(`Shopfloor Training Drill
========================

Signs in as an employee, plays a scenario end to end against a running
service and checks the progress it reports.

Usage:
  go run ./cmd/drill [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -email string
        Employee email (default "john.smith@retailtraining.com")
  -password string
        Employee password, when the roster requires one
  -scenario string
        Scenario to play (default "cs-1")
  -answer string
        Scripted answer; repeat the flag for one answer per step
  -rounds int
        Number of attempts to play (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for drill output (default: drill_log_TIMESTAMP.log)
  -verbose
        Log every answered step
  -help
        Show this help message

Examples:
  # Play the default scenario once
  go run ./cmd/drill

  # Play a sales scenario three times with verbose output
  go run ./cmd/drill -scenario sales-1 -rounds 3 -verbose
`)
}

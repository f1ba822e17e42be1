package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/shopfloor/internal/drill"
)

const defaultDrillTimeout = 5 * time.Minute

// answerList collects repeated -answer flags.
type answerList []string

func (a *answerList) String() string { return strings.Join(*a, " | ") }

func (a *answerList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var answers answerList
	var (
		baseURL  = flag.String("url", drill.DefaultBaseURL, "Base URL of the service")
		email    = flag.String("email", drill.DefaultEmail, "Employee email")
		password = flag.String("password", "", "Employee password")
		scenario = flag.String("scenario", drill.DefaultScenarioID, "Scenario to play")
		rounds   = flag.Int("rounds", 1, "Number of attempts to play")
		timeout  = flag.Duration("timeout", drill.DefaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Log file for drill output (default: drill_log_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Log every answered step")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Var(&answers, "answer", "Scripted answer (repeatable)")
	flag.Parse()

	if *help {
		drill.ShowHelp()
		return
	}

	if err := drill.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDrillTimeout)
	defer cancel()

	config := &drill.Config{
		BaseURL:    *baseURL,
		Email:      *email,
		Password:   *password,
		ScenarioID: *scenario,
		Answers:    answers,
		Rounds:     *rounds,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if _, err := drill.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Drill failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}

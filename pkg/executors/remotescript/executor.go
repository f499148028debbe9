// Package remotescript executes user-provided Python scripts on a sandboxed
// execution service. The script must declare a main function; its parameters
// are bound from the trigger context and the return value is captured from
// stdout.
package remotescript

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/sandbox"
)

const (
	defaultPollInterval = time.Second
	defaultPollBudget   = 30 * time.Second
)

// JobService is the slice of the sandbox client the executor needs. Tests
// substitute a fake to drive the poll loop deterministically.
type JobService interface {
	Submit(ctx context.Context, req sandbox.SubmitRequest) (string, error)
	Result(ctx context.Context, token string) (*sandbox.JobResult, error)
}

// Config is the remote script action configuration.
type Config struct {
	SourceCode           string `json:"sourceCode"`
	Stdin                string `json:"stdin,omitempty"`
	CommandLineArguments string `json:"commandLineArguments,omitempty"`
}

type Executor struct {
	jobs         JobService
	pollInterval time.Duration
	pollBudget   time.Duration
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewExecutor(jobs JobService) *Executor {
	return &Executor{
		jobs:         jobs,
		pollInterval: defaultPollInterval,
		pollBudget:   defaultPollBudget,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

// WithPolling overrides the poll interval and overall budget.
func (e *Executor) WithPolling(interval, budget time.Duration) *Executor {
	e.pollInterval = interval
	e.pollBudget = budget

	return e
}

// WithClock replaces the wall clock and sleep hook, used by tests.
func (e *Executor) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Executor {
	e.now = now
	e.sleep = sleep

	return e
}

func (e *Executor) Type() models.ActionType {
	return models.ActionTypeRemoteScript
}

// Execute submits the wrapped script and polls until it reaches a terminal
// status or the budget expires. Failures are reported in the result, never as
// an error, so one bad script cannot abort a batch of actions.
func (e *Executor) Execute(ctx context.Context, config string, trigger *models.TriggerContext, logger *slog.Logger) (*models.ExecutionResult, error) {
	now := e.now()

	var cfg Config
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		return models.NewFailureResult(fmt.Sprintf("invalid remote script configuration: %v", err), now), nil
	}

	if cfg.SourceCode == "" {
		return models.NewFailureResult("remote script configuration has no source code", now), nil
	}

	params, ok := parseMainParams(cfg.SourceCode)
	if !ok {
		return models.NewFailureResult("script does not declare a main function", now), nil
	}

	bound, err := bindParams(params, trigger)
	if err != nil {
		logger.WarnContext(ctx, "Script parameter binding failed", "error", err)

		return models.NewFailureResult(err.Error(), now), nil
	}

	runner := buildRunnerScript(cfg.SourceCode, params, bound)

	req := sandbox.SubmitRequest{
		SourceCode:           runner,
		LanguageID:           sandbox.LanguagePython,
		CommandLineArguments: cfg.CommandLineArguments,
		RedirectStderr:       false,
	}

	if cfg.Stdin != "" {
		req.Stdin = base64.StdEncoding.EncodeToString([]byte(cfg.Stdin))
	}

	token, err := e.jobs.Submit(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "Script submission failed", "error", err)

		return models.NewFailureResult(fmt.Sprintf("failed to submit script: %v", err), now), nil
	}

	logger.InfoContext(ctx, "Script submitted", "token", token, "params", len(params))

	job, timedOut, pollErr := e.poll(ctx, token)

	script := &models.ScriptResult{Token: token, TimedOut: timedOut}
	if job != nil {
		script.StatusID = job.StatusID
		script.StatusName = job.StatusDescription
		script.Stdout = job.Stdout
		script.Stderr = job.Stderr
		script.TimeMs = job.TimeMs
		script.MemoryKB = job.MemoryKB
	}

	result := e.resultFor(script, timedOut, pollErr, now)
	result.Script = script

	return result, nil
}

func (e *Executor) resultFor(script *models.ScriptResult, timedOut bool, pollErr error, now time.Time) *models.ExecutionResult {
	switch {
	case pollErr != nil:
		return models.NewFailureResult(fmt.Sprintf("failed to poll script result: %v", pollErr), now)
	case timedOut:
		return models.NewFailureResult(
			fmt.Sprintf("script did not finish within %s (last status: %s)", e.pollBudget, script.StatusName), now)
	case script.StatusID == sandbox.StatusAccepted:
		return models.NewSuccessResult("Script executed successfully", now)
	default:
		message := script.StatusName
		if script.Stderr != "" {
			message = fmt.Sprintf("%s: %s", message, script.Stderr)
		}

		return models.NewFailureResult(fmt.Sprintf("script execution failed: %s", message), now)
	}
}

// poll fetches the job state on a fixed interval until it is terminal or the
// budget runs out. On timeout the last observed state is returned alongside
// the timedOut flag.
func (e *Executor) poll(ctx context.Context, token string) (*sandbox.JobResult, bool, error) {
	deadline := e.now().Add(e.pollBudget)

	var last *sandbox.JobResult

	for {
		job, err := e.jobs.Result(ctx, token)
		if err != nil {
			return last, false, err
		}

		last = job

		if job.Terminal() {
			return job, false, nil
		}

		if !e.now().Add(e.pollInterval).Before(deadline) {
			return last, true, nil
		}

		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return last, false, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"sourceCode"},
		"properties": map[string]any{
			"sourceCode": map[string]any{
				"type":        "string",
				"description": "Python script declaring a main function",
			},
			"stdin": map[string]any{
				"type":        "string",
				"description": "Data piped to the script's standard input",
			},
			"commandLineArguments": map[string]any{
				"type":        "string",
				"description": "Arguments passed to the interpreter invocation",
			},
		},
	}
}

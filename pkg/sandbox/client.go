// Package sandbox is the client for the remote code execution service. Jobs
// are submitted once and then polled by token until the service reports a
// terminal status.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LanguagePython selects the Python 3 interpreter on the execution service.
const LanguagePython = 71

// Status codes reported by the execution service. Anything below
// StatusAccepted is still in flight.
const (
	StatusAccepted         = 3
	StatusFailureThreshold = 4
)

const defaultRequestTimeout = 10 * time.Second

// SubmitRequest is the submission payload. Stdin must already be
// base64-encoded per the service's calling convention.
type SubmitRequest struct {
	SourceCode           string `json:"source_code"`
	LanguageID           int    `json:"language_id"`
	Stdin                string `json:"stdin,omitempty"`
	CommandLineArguments string `json:"command_line_arguments,omitempty"`
	CompilerOptions      string `json:"compiler_options,omitempty"`
	RedirectStderr       bool   `json:"redirect_stderr_to_stdout,omitempty"`
}

// Submission is the service's answer to a submit call. The token is opaque.
type Submission struct {
	Token string `json:"token"`
}

// JobResult is the polled state of a submitted job.
type JobResult struct {
	StatusID          int     `json:"status_id"`
	StatusDescription string  `json:"status_description,omitempty"`
	Stdout            string  `json:"stdout,omitempty"`
	Stderr            string  `json:"stderr,omitempty"`
	TimeMs            float64 `json:"time_ms,omitempty"`
	MemoryKB          int64   `json:"memory_kb,omitempty"`
}

// Terminal reports whether the job reached a final status. The service's
// contract: 3 means success, 4 and above means failure, anything else means
// still running.
func (r *JobResult) Terminal() bool {
	return r.StatusID == StatusAccepted || r.StatusID >= StatusFailureThreshold
}

// Succeeded reports whether the job finished successfully.
func (r *JobResult) Succeeded() bool {
	return r.StatusID == StatusAccepted
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Submit sends a job to the execution service and returns its token.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/submissions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create submission request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	var submission Submission
	if err := c.do(httpReq, &submission); err != nil {
		return "", err
	}

	if submission.Token == "" {
		return "", fmt.Errorf("execution service returned no job token")
	}

	return submission.Token, nil
}

// Result fetches the current state of a submitted job.
func (c *Client) Result(ctx context.Context, token string) (*JobResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/submissions/"+token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create result request: %w", err)
	}

	var result JobResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execution service request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read execution service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("execution service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode execution service response: %w", err)
	}

	return nil
}

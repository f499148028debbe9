// Package httpapi provides the HTTP API action executor. It renders
// placeholders into the configured request, performs the call with an
// optional per-request timeout, and post-processes the response so that
// arbitrary upstream payloads stay safe to persist and display.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/template"
)

// Config is the http_api action configuration document.
type Config struct {
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Headers        map[string]string `json:"headers"`
	Body           string            `json:"body"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

var supportedMethods = map[string]string{
	"GET":    http.MethodGet,
	"POST":   http.MethodPost,
	"PUT":    http.MethodPut,
	"DELETE": http.MethodDelete,
	"PATCH":  http.MethodPatch,
}

type Executor struct {
	transport http.RoundTripper
	now       func() time.Time
}

func NewExecutor() *Executor {
	return &Executor{now: time.Now}
}

// WithTransport overrides the HTTP transport. Used by tests.
func (e *Executor) WithTransport(transport http.RoundTripper) *Executor {
	e.transport = transport

	return e
}

func (e *Executor) Type() models.ActionType {
	return models.ActionTypeHTTPAPI
}

// Execute never returns a non-nil error: every failure mode, including
// malformed configuration and network errors, is normalized into a failure
// result.
func (e *Executor) Execute(
	ctx context.Context,
	config string,
	trigger *models.TriggerContext,
	logger *slog.Logger,
) (*models.ExecutionResult, error) {
	logger = logger.With("module", "httpapi_executor")

	var cfg Config
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		logger.ErrorContext(ctx, "Invalid http_api action configuration", "error", err)

		return models.NewFailureResult(
			fmt.Sprintf("Invalid HTTP API action configuration: %v", err), e.now()), nil
	}

	if strings.TrimSpace(cfg.URL) == "" {
		return models.NewFailureResult("HTTP API action requires 'url' in configuration", e.now()), nil
	}

	url := template.Resolve(cfg.URL, trigger)
	method := normalizeMethod(cfg.Method)
	body := template.Resolve(cfg.Body, trigger)

	if template.HasPlaceholders(url) {
		logger.WarnContext(ctx, "Request URL still contains unresolved placeholders", "url", url)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return models.NewFailureResult(
			fmt.Sprintf("Failed to build HTTP request: %v", err), e.now()), nil
	}

	// http.Header canonicalizes keys, so a placeholder-filled header value
	// never produces a case-variant duplicate.
	for key, value := range cfg.Headers {
		req.Header.Set(key, template.Resolve(value, trigger))
	}

	client := &http.Client{Transport: e.transport}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	logger.InfoContext(ctx, "Executing HTTP API action", "method", method, "url", url)

	resp, err := client.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "HTTP request failed", "error", err)

		return models.NewFailureResult(
			fmt.Sprintf("HTTP request failed: %v", err), e.now()), nil
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := processResponse(resp)
	if err != nil {
		return models.NewFailureResult(
			fmt.Sprintf("Failed to read HTTP response: %v", err), e.now()), nil
	}

	payload.URL = url
	payload.Method = method

	result := models.NewSuccessResult(
		fmt.Sprintf("HTTP request completed with status %d", resp.StatusCode), e.now())
	result.HTTP = payload

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Success = false
		result.Message = fmt.Sprintf("HTTP request returned status %d", resp.StatusCode)
	}

	logger.InfoContext(ctx, "HTTP API action finished",
		"status_code", resp.StatusCode, "success", result.Success)

	return result, nil
}

// normalizeMethod uppercases the configured verb and falls back to GET for
// anything outside the supported set.
func normalizeMethod(method string) string {
	if normalized, ok := supportedMethods[strings.ToUpper(strings.TrimSpace(method))]; ok {
		return normalized
	}

	return http.MethodGet
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to send the HTTP request to. Supports {{field}} placeholders.",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method; anything outside GET/POST/PUT/DELETE/PATCH falls back to GET.",
				"default":     "GET",
			},
			"headers": map[string]any{
				"type":                 "object",
				"description":          "Request headers. Values support placeholders.",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body. Supports placeholders.",
			},
			"timeoutSeconds": map[string]any{
				"type":        "integer",
				"description": "Per-request timeout; 0 uses the transport default.",
				"minimum":     0,
			},
		},
		"required": []string{"url"},
	}
}

// Package email provides the send_email action executor.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/template"
)

// Config is the send_email action configuration document.
type Config struct {
	To      []string `json:"to"`
	CC      []string `json:"cc"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Mailer delivers one message. Implemented by SMTPMailer for production and
// by fakes in tests.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a fully resolved outgoing mail.
type Message struct {
	To      []string
	CC      []string
	Subject string
	Body    string
}

type Executor struct {
	mailer Mailer
	now    func() time.Time
}

func NewExecutor(mailer Mailer) *Executor {
	return &Executor{mailer: mailer, now: time.Now}
}

func (e *Executor) Type() models.ActionType {
	return models.ActionTypeSendEmail
}

// Execute resolves placeholders in the subject, body, and recipient lists and
// hands the message to the mailer. Failures are normalized into a failure
// result, never returned as an error.
func (e *Executor) Execute(
	ctx context.Context,
	config string,
	trigger *models.TriggerContext,
	logger *slog.Logger,
) (*models.ExecutionResult, error) {
	logger = logger.With("module", "email_executor")

	var cfg Config
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		logger.ErrorContext(ctx, "Invalid send_email action configuration", "error", err)

		return models.NewFailureResult(
			fmt.Sprintf("Invalid email action configuration: %v", err), e.now()), nil
	}

	if len(cfg.To) == 0 {
		return models.NewFailureResult("Email action requires at least one recipient in 'to'", e.now()), nil
	}

	msg := Message{
		To:      resolveAll(cfg.To, trigger),
		CC:      resolveAll(cfg.CC, trigger),
		Subject: template.Resolve(cfg.Subject, trigger),
		Body:    template.Resolve(cfg.Body, trigger),
	}

	logger.InfoContext(ctx, "Sending email", "recipients", len(msg.To), "subject", msg.Subject)

	if err := e.mailer.Send(ctx, msg); err != nil {
		logger.WarnContext(ctx, "Email delivery failed", "error", err)

		return models.NewFailureResult(fmt.Sprintf("Failed to send email: %v", err), e.now()), nil
	}

	result := models.NewSuccessResult(
		fmt.Sprintf("Email sent to %s", strings.Join(msg.To, ", ")), e.now())
	result.Email = &models.EmailResult{Recipients: msg.To, Subject: msg.Subject}

	return result, nil
}

func resolveAll(values []string, trigger *models.TriggerContext) []string {
	if len(values) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(values))
	for _, v := range values {
		resolved = append(resolved, template.Resolve(v, trigger))
	}

	return resolved
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "array",
				"description": "Recipient addresses. Entries support {{field}} placeholders.",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
			"cc": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Subject line. Supports placeholders.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Plain-text body. Supports placeholders.",
			},
		},
		"required": []string{"to"},
	}
}

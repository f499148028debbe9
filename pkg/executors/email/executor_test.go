package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/models"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	f.sent = append(f.sent, msg)

	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecute_SendsResolvedMessage(t *testing.T) {
	mailer := &fakeMailer{}

	trigger := models.NewTriggerContext(map[string]any{
		"Email":    "alice@example.com",
		"CaseName": "Acme",
	})

	config := `{
		"to": ["{{Email}}"],
		"cc": ["ops@example.com"],
		"subject": "Onboarding {{CaseName}}",
		"body": "Case {{CaseName}} moved forward."
	}`

	result, err := NewExecutor(mailer).Execute(context.Background(), config, trigger, testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, mailer.sent[0].To)
	assert.Equal(t, []string{"ops@example.com"}, mailer.sent[0].CC)
	assert.Equal(t, "Onboarding Acme", mailer.sent[0].Subject)
	assert.Equal(t, "Case Acme moved forward.", mailer.sent[0].Body)

	require.NotNil(t, result.Email)
	assert.Equal(t, []string{"alice@example.com"}, result.Email.Recipients)
	assert.Equal(t, "Onboarding Acme", result.Email.Subject)
}

func TestExecute_MissingRecipients(t *testing.T) {
	mailer := &fakeMailer{}

	result, err := NewExecutor(mailer).Execute(context.Background(), `{"subject":"hi"}`, nil, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, mailer.sent)
}

func TestExecute_InvalidConfiguration(t *testing.T) {
	result, err := NewExecutor(&fakeMailer{}).Execute(context.Background(), "nope", nil, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid email action configuration")
}

func TestExecute_DeliveryFailureBecomesFailureResult(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}

	config := `{"to": ["alice@example.com"], "subject": "hi"}`

	result, err := NewExecutor(mailer).Execute(context.Background(), config, nil, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "smtp down")
}

package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecute_SuccessfulRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "token-42", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"case":"Acme"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	trigger := models.NewTriggerContext(map[string]any{
		"Token":    "token-42",
		"CaseName": "Acme",
	})

	config := `{
		"url": "` + server.URL + `",
		"method": "post",
		"headers": {"Authorization": "{{Token}}"},
		"body": "{\"case\":\"{{CaseName}}\"}"
	}`

	result, err := NewExecutor().Execute(context.Background(), config, trigger, testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.NotNil(t, result.HTTP)
	assert.Equal(t, http.StatusOK, result.HTTP.StatusCode)
	assert.Equal(t, `{"ok":true}`, result.HTTP.Body)
	assert.Equal(t, http.MethodPost, result.HTTP.Method)
}

func TestExecute_PlaceholderInURL(t *testing.T) {
	var requestedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	trigger := models.NewTriggerContext(map[string]any{"OnboardingId": 42.0})
	config := `{"url": "` + server.URL + `/onboardings/{{OnboardingId}}"}`

	result, err := NewExecutor().Execute(context.Background(), config, trigger, testLogger())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "/onboardings/42", requestedPath)
}

func TestExecute_NonSuccessStatusKeepsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer server.Close()

	config := `{"url": "` + server.URL + `"}`

	result, err := NewExecutor().Execute(context.Background(), config, nil, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "HTTP request returned status 502", result.Message)
	require.NotNil(t, result.HTTP)
	assert.Equal(t, http.StatusBadGateway, result.HTTP.StatusCode)
	assert.Equal(t, "upstream broke", result.HTTP.Body)
}

func TestExecute_InvalidConfiguration(t *testing.T) {
	result, err := NewExecutor().Execute(context.Background(), "{not json", nil, testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = NewExecutor().Execute(context.Background(), `{"method":"GET"}`, nil, testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "HTTP API action requires 'url' in configuration", result.Message)
}

func TestExecute_ConnectionFailure(t *testing.T) {
	config := `{"url": "http://127.0.0.1:1"}`

	result, err := NewExecutor().Execute(context.Background(), config, nil, testLogger())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "HTTP request failed")
	assert.Nil(t, result.HTTP)
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"get", http.MethodGet},
		{"POST", http.MethodPost},
		{" put ", http.MethodPut},
		{"delete", http.MethodDelete},
		{"patch", http.MethodPatch},
		{"PATCH", http.MethodPatch},
		{"Patch", http.MethodPatch},
		{"TRACE", http.MethodGet},
		{"OPTIONS", http.MethodGet},
		{"", http.MethodGet},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeMethod(tt.input), "method %q", tt.input)
	}
}

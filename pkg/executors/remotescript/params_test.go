package remotescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/models"
)

func TestParseMainParams(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
		found    bool
	}{
		{
			name:     "bare names",
			source:   "def main(a, b, c):\n    return a",
			expected: []string{"a", "b", "c"},
			found:    true,
		},
		{
			name:     "defaults stripped",
			source:   "def main(a, b=1, c='x'):\n    pass",
			expected: []string{"a", "b", "c"},
			found:    true,
		},
		{
			name:     "annotations stripped",
			source:   "def main(a: int, b: str = 'x'):\n    pass",
			expected: []string{"a", "b"},
			found:    true,
		},
		{
			name:     "no parameters",
			source:   "def main():\n    return 1",
			expected: []string{},
			found:    true,
		},
		{
			name:     "indented declaration",
			source:   "import os\n\ndef main(value):\n    return value",
			expected: []string{"value"},
			found:    true,
		},
		{
			name:   "no main function",
			source: "def helper(a):\n    return a",
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, found := parseMainParams(tt.source)
			assert.Equal(t, tt.found, found)

			if tt.found {
				assert.Equal(t, tt.expected, params)
			}
		})
	}
}

func TestBindParams_ResolvesFromTrigger(t *testing.T) {
	trigger := models.NewTriggerContext(map[string]any{
		"OnboardingId": 42.0,
		"caseName":     "Acme",
	})

	bound, err := bindParams([]string{"onboardingId", "caseName"}, trigger)
	require.NoError(t, err)

	assert.Equal(t, "42", bound["onboardingId"])
	assert.Equal(t, `"Acme"`, bound["caseName"])
}

func TestBindParams_ReservedWorkflowContext(t *testing.T) {
	trigger := models.NewTriggerContext(map[string]any{"StageId": 5.0})

	bound, err := bindParams([]string{"workflowContext"}, trigger)
	require.NoError(t, err)

	assert.JSONEq(t, `{"StageId": 5}`, bound["workflowContext"])
}

func TestBindParams_FailFastNamesAllMissing(t *testing.T) {
	trigger := models.NewTriggerContext(map[string]any{"a": 1.0})

	_, err := bindParams([]string{"a", "b", "c"}, trigger)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "b, c")
	assert.NotContains(t, err.Error(), "a,")
}

func TestBuildRunnerScript(t *testing.T) {
	source := "def main(a, b):\n    return a + b"
	bound := map[string]string{"a": "1", "b": `"x"`}

	script := buildRunnerScript(source, []string{"a", "b"}, bound)

	assert.Contains(t, script, "import json")
	assert.Contains(t, script, source)
	assert.Contains(t, script, "a = json.loads('1')")
	assert.Contains(t, script, `b = json.loads('"x"')`)
	assert.Contains(t, script, "_result = main(a, b)")
	assert.Contains(t, script, "print(_result)")
}

func TestPythonStringLiteral_EscapesQuotesAndBackslashes(t *testing.T) {
	assert.Equal(t, `'{"k": "it\'s"}'`, pythonStringLiteral(`{"k": "it's"}`))
	assert.Equal(t, `'a\\b'`, pythonStringLiteral(`a\b`))
}

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stageflow/stageflow/pkg/models"
)

func TestResolve_SimplePlaceholders(t *testing.T) {
	ctx := models.NewTriggerContext(map[string]any{
		"name":  "John",
		"count": 3.0,
	})

	assert.Equal(t, "Hello John", Resolve("Hello {{name}}", ctx))
	assert.Equal(t, "3 items", Resolve("{{count}} items", ctx))
}

func TestResolve_UnresolvedTokensPreserved(t *testing.T) {
	ctx := models.NewTriggerContext(map[string]any{"known": "yes"})

	result := Resolve("{{known}} and {{unknown}}", ctx)

	assert.Equal(t, "yes and {{unknown}}", result)
}

func TestResolve_NonStringValuesSerialized(t *testing.T) {
	ctx := models.NewTriggerContext(map[string]any{
		"payload": map[string]any{"id": 42.0},
		"flag":    true,
	})

	assert.Equal(t, `{"id":42}`, Resolve("{{payload}}", ctx))
	assert.Equal(t, "true", Resolve("{{flag}}", ctx))
}

func TestResolve_CaseInsensitiveLookup(t *testing.T) {
	ctx := models.NewTriggerContext(map[string]any{"CaseName": "Acme"})

	assert.Equal(t, "Acme", Resolve("{{casename}}", ctx))
}

func TestResolve_NoPlaceholders(t *testing.T) {
	ctx := models.NewTriggerContext(map[string]any{"name": "John"})

	input := "no tokens here"

	assert.Equal(t, input, Resolve(input, ctx))
	assert.Equal(t, "", Resolve("", ctx))
}

func TestResolve_NilContext(t *testing.T) {
	assert.Equal(t, "{{name}}", Resolve("{{name}}", nil))
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("{{token}}"))
	assert.False(t, HasPlaceholders("plain text"))
	assert.False(t, HasPlaceholders("{{not a token}}"))
}

package remotescript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stageflow/stageflow/pkg/models"
)

// reservedContextParam binds the entire serialized trigger context instead of
// a single field.
const reservedContextParam = "workflowContext"

var mainSignaturePattern = regexp.MustCompile(`(?m)^\s*def\s+main\s*\(([^)]*)\)`)

// parseMainParams extracts the formal parameter names of the script's main
// function. Defaults and type annotations are stripped to bare names.
func parseMainParams(source string) ([]string, bool) {
	match := mainSignaturePattern.FindStringSubmatch(source)
	if match == nil {
		return nil, false
	}

	raw := strings.TrimSpace(match[1])
	if raw == "" {
		return []string{}, true
	}

	parts := strings.Split(raw, ",")
	params := make([]string, 0, len(parts))

	for _, part := range parts {
		name := part

		if idx := strings.Index(name, "="); idx >= 0 {
			name = name[:idx]
		}

		if idx := strings.Index(name, ":"); idx >= 0 {
			name = name[:idx]
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		params = append(params, name)
	}

	return params, true
}

// bindParams resolves every main parameter against the trigger context. Each
// bound value is a JSON document ready to embed in the runner script. The
// whole binding fails fast, naming every missing parameter, so a
// misconfigured script never reaches the execution service.
func bindParams(params []string, trigger *models.TriggerContext) (map[string]string, error) {
	bound := make(map[string]string, len(params))

	var missing []string

	for _, param := range params {
		if strings.EqualFold(param, reservedContextParam) {
			bound[param] = trigger.JSON()

			continue
		}

		value, ok := trigger.Field(param)
		if !ok {
			missing = append(missing, param)

			continue
		}

		encoded, err := encodeJSON(value)
		if err != nil {
			missing = append(missing, param)

			continue
		}

		bound[param] = encoded
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("cannot resolve script parameters from trigger context: %s",
			strings.Join(missing, ", "))
	}

	return bound, nil
}

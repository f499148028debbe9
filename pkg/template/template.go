// Package template resolves {{name}} placeholders in action configuration
// strings against a trigger context.
package template

import (
	"encoding/json"
	"log/slog"
	"regexp"

	"github.com/stageflow/stageflow/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Resolve substitutes every {{name}} token in input with the matching trigger
// context field. Unresolved tokens are preserved verbatim; the function never
// fails, a lookup problem only costs that one token.
func Resolve(input string, ctx *models.TriggerContext) string {
	if input == "" || ctx == nil {
		return input
	}

	return placeholderPattern.ReplaceAllStringFunc(input, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]

		value, ok := ctx.Field(name)
		if !ok {
			return token
		}

		rendered, ok := render(value)
		if !ok {
			slog.Warn("Placeholder value could not be rendered, leaving token in place",
				"placeholder", name)

			return token
		}

		return rendered
	})
}

// HasPlaceholders reports whether input contains at least one {{name}} token.
func HasPlaceholders(input string) bool {
	return placeholderPattern.MatchString(input)
}

func render(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}

		return string(data), true
	}
}

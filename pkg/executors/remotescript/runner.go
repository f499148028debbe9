package remotescript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// encodeJSON serializes a trigger context value for embedding in the runner
// script. Strings are wrapped as JSON strings so the script always decodes a
// valid document.
func encodeJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode parameter value: %w", err)
	}

	return string(data), nil
}

// buildRunnerScript wraps the user script with a positional harness: each
// resolved parameter is decoded from JSON into a local variable, main is
// invoked with the parameters in declaration order, and the return value is
// printed so it lands on stdout.
func buildRunnerScript(source string, params []string, bound map[string]string) string {
	var b strings.Builder

	b.WriteString("import json\n\n")
	b.WriteString(source)
	b.WriteString("\n\n")

	for _, param := range params {
		fmt.Fprintf(&b, "%s = json.loads(%s)\n", param, pythonStringLiteral(bound[param]))
	}

	fmt.Fprintf(&b, "_result = main(%s)\n", strings.Join(params, ", "))
	b.WriteString("if _result is not None:\n    print(_result)\n")

	return b.String()
}

// pythonStringLiteral quotes a JSON document as a Python string literal. JSON
// string escapes are a subset of Python's, so escaping backslashes and quotes
// is sufficient.
func pythonStringLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)

	return "'" + s + "'"
}

package parser

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specpress/specpress/internal/errors"
)

// wrapKey is the synthetic key used when a structured document's top-level
// value is not a mapping, so downstream processing always sees a mapping.
const wrapKey = "content"

func parseYAML(content string) (*Document, error) {
	var data any
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		return nil, errors.NewValidationCause("invalid YAML", err)
	}
	return &Document{Data: asMapping(data)}, nil
}

func parseJSON(content string) (*Document, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, errors.NewValidationCause("invalid JSON", err)
	}
	return &Document{Data: asMapping(data)}, nil
}

func asMapping(data any) map[string]any {
	switch v := data.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	default:
		return map[string]any{wrapKey: v}
	}
}

// mappingMarkdown renders a key/value mapping as markdown sections, keys
// sorted for deterministic output. Non-string values serialize as YAML.
func mappingMarkdown(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		lines = append(lines, "## "+key, "")
		switch v := data[key].(type) {
		case string:
			lines = append(lines, v, "")
		default:
			out, err := yaml.Marshal(v)
			if err != nil {
				continue
			}
			lines = append(lines, strings.TrimRight(string(out), "\n"), "")
		}
	}
	return strings.Join(lines, "\n")
}

func serializeYAML(data map[string]any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", errors.NewValidationCause("failed to serialize YAML", err)
	}
	return string(out), nil
}

// serializeJSON emits 2-space-indented JSON with unicode and HTML characters
// kept literal rather than escaped.
func serializeJSON(data map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", errors.NewValidationCause("failed to serialize JSON", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

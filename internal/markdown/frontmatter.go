package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// SplitFrontMatter separates a leading frontmatter block from the Markdown
// body. Sources without frontmatter are returned unchanged with a nil map.
func SplitFrontMatter(source []byte) (map[string]any, []byte, error) {
	var raw map[string]any

	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(raw) == 0 {
		return nil, body, nil
	}
	return normalizeMap(raw), body, nil
}

// normalizeMap rewrites the map[interface{}]interface{} values produced by the
// YAML decoder so the result can be encoded as JSON.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return value
	}
}

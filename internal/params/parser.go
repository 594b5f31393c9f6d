package params

import (
	"fmt"
	"strings"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	props, err := ParseKeyValuePairs([]string{"auto.offset.reset=earliest"})
//	// Returns: map[string]string{"auto.offset.reset": "earliest"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("property %q is not in key=value format (example: --property auto.offset.reset=earliest)", pair)
		}

		if key == "" {
			return nil, fmt.Errorf("property has empty key: %q", pair)
		}

		result[key] = value
	}

	return result, nil
}

// Merge overlays b on top of a without mutating either. Keys in b win.
func Merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

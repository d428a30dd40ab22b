// Package strings provides string list utilities for configuration parsing.
package strings

import (
	"strings"
)

// SplitAndTrim splits raw on sep, trims every element and drops empty and
// duplicate entries. Order is preserved.
//
//	SplitAndTrim(" Canada, India,,Canada ", ",")
//	// Returns: []string{"Canada", "India"}
func SplitAndTrim(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(raw, sep))
}

// DedupeAndTrim removes duplicates and blank strings, trimming each element.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

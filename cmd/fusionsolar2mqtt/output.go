package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/fusionsolar2mqtt/internal/telemetry"
)

// pathValue is one flattened entry of the export record.
type pathValue struct {
	path  string
	value string
}

// formatRecord renders the export record as an aligned, human-readable
// "path: value" listing for --list. Nested mapping keys are joined
// with "/"; entries are sorted for stable output.
func formatRecord(record telemetry.Record) string {
	entries := flatten("", map[string]any{
		"plants":  anyMap(record.Plants),
		"devices": anyMap(record.Devices),
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	maxLen := 0
	for _, entry := range entries {
		if len(entry.path) > maxLen {
			maxLen = len(entry.path)
		}
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%-*s: %s", maxLen, entry.path, entry.value))
	}
	return "  " + strings.Join(lines, "\n  ")
}

// flatten walks nested mappings, producing "a/b/c" paths for scalars.
func flatten(prefix string, value map[string]any) []pathValue {
	var entries []pathValue
	for key, item := range value {
		path := key
		if prefix != "" {
			path = prefix + "/" + key
		}
		switch typed := item.(type) {
		case map[string]any:
			entries = append(entries, flatten(path, typed)...)
		default:
			entries = append(entries, pathValue{path: path, value: formatValue(item)})
		}
	}
	return entries
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format(time.RFC3339)
	case float64:
		return formatFloat(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// formatFloat trims the noise off whole-valued floats (5000 not 5000.000000).
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func anyMap(in map[string]map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

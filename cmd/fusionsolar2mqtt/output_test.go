package main

import (
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/fusionsolar2mqtt/internal/telemetry"
)

func TestFormatRecord(t *testing.T) {
	record := telemetry.Record{
		Plants: map[string]map[string]any{
			"Home": {
				"day_power": 12.5,
				"power": map[string]any{
					"production":  5000.0,
					"consumption": 3200.0,
				},
			},
		},
		Devices: map[string]map[string]any{
			"Home.Inverter": {
				"mppt_power": 5.0,
			},
		},
	}

	got := formatRecord(record)
	lines := strings.Split(got, "\n")

	want := []string{
		"devices/Home.Inverter/mppt_power",
		"plants/Home/day_power",
		"plants/Home/power/consumption",
		"plants/Home/power/production",
	}
	if len(lines) != len(want) {
		t.Fatalf("line count = %d, want %d:\n%s", len(lines), len(want), got)
	}
	for i, path := range want {
		if !strings.HasPrefix(lines[i], "  "+path) {
			t.Errorf("line %d = %q, want path %q (sorted)", i, lines[i], path)
		}
	}

	// All colons line up on the longest path.
	col := strings.Index(lines[0], ":")
	for i, line := range lines {
		if strings.Index(line, ":") != col {
			t.Errorf("line %d colon misaligned: %q", i, line)
		}
	}
}

func TestFormatRecord_Values(t *testing.T) {
	opened := time.Date(2026, 8, 31, 7, 2, 0, 0, time.UTC)
	record := telemetry.Record{
		Plants: map[string]map[string]any{
			"Home": {
				"whole":  5000.0,
				"frac":   12.5,
				"state":  "connected",
				"online": true,
			},
		},
		Devices: map[string]map[string]any{
			"Home.Inverter": {
				"open_time": opened,
			},
		},
	}

	got := formatRecord(record)

	tests := []struct {
		name string
		want string
	}{
		{"whole float without decimals", "whole"},
		{"fractional float as written", "frac"},
		{"string verbatim", "state"},
		{"bool verbatim", "online"},
		{"time as RFC3339", "open_time"},
	}
	wantValues := map[string]string{
		"whole":     "5000",
		"frac":      "12.5",
		"state":     "connected",
		"online":    "true",
		"open_time": "2026-08-31T07:02:00Z",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := wantValues[tt.want]
			found := false
			for _, line := range strings.Split(got, "\n") {
				if strings.Contains(line, "/"+tt.want) && strings.HasSuffix(line, ": "+value) {
					found = true
				}
			}
			if !found {
				t.Errorf("no line renders %s as %q:\n%s", tt.want, value, got)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	entries := flatten("", map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": 1.0,
			},
			"d": "x",
		},
		"e": 2.0,
	})

	if len(entries) != 3 {
		t.Fatalf("entry count = %d, want 3", len(entries))
	}

	paths := make(map[string]string, len(entries))
	for _, entry := range entries {
		paths[entry.path] = entry.value
	}
	if paths["a/b/c"] != "1" {
		t.Errorf("a/b/c = %q, want 1", paths["a/b/c"])
	}
	if paths["a/d"] != "x" {
		t.Errorf("a/d = %q, want x", paths["a/d"])
	}
	if paths["e"] != "2" {
		t.Errorf("e = %q, want 2", paths["e"])
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{5000, "5000"},
		{0, "0"},
		{-830, "-830"},
		{12.5, "12.5"},
		{0.001, "0.001"},
	}

	for _, tt := range tests {
		if got := formatFloat(tt.input); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package differ

import (
	"encoding/json"
	"testing"
)

func TestSeverityLevel_String(t *testing.T) {
	tests := []struct {
		level SeverityLevel
		want  string
	}{
		{SeverityCritical, "critical"},
		{SeverityModerate, "moderate"},
		{SeverityInfo, "info"},
		{SeverityLevel(7), "unknown"},
		{SeverityLevel(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("SeverityLevel(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestParseSeverityLevel(t *testing.T) {
	for _, level := range []SeverityLevel{SeverityInfo, SeverityModerate, SeverityCritical} {
		got, err := ParseSeverityLevel(level.String())
		if err != nil || got != level {
			t.Errorf("ParseSeverityLevel(%q) = %v, %v", level.String(), got, err)
		}
	}
	if _, err := ParseSeverityLevel("safe"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestDriftItem_JSONSeverity(t *testing.T) {
	data, err := json.Marshal(DriftItem{Op: "remove", Path: "/categories/0/terms/khurafat", Severity: SeverityCritical})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["severity"] != "critical" {
		t.Errorf("severity = %v, want critical", got["severity"])
	}

	if _, err := json.Marshal(DriftItem{Severity: SeverityLevel(9)}); err == nil {
		t.Error("expected error for out-of-range severity")
	}
}

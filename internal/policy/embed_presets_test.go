package policy

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/patuh/patuh/internal/models"
)

// Fails if the //go:embed directive or the preset file names drift.
func TestEmbeddedPresetFilesExist(t *testing.T) {
	for name, path := range presetFiles {
		t.Run(name, func(t *testing.T) {
			data, err := presetFS.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read embedded file %q: %v (check //go:embed directive)", path, err)
			}
			if len(data) < 10 {
				t.Errorf("embedded file %q suspiciously small (%d bytes)", path, len(data))
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	tests := []struct {
		name string
		mode models.PolicyMode
	}{
		{"baseline", models.PolicyModeWarn},
		{"strict", models.PolicyModeStrict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset := GetPreset(tt.name)
			if preset == nil {
				t.Fatalf("GetPreset(%q) returned nil (check embed directive and YAML parsing)", tt.name)
			}
			if preset.Name == "" {
				t.Errorf("preset %q has empty Name field", tt.name)
			}
			if len(preset.Rules) == 0 {
				t.Errorf("preset %q has no rules", tt.name)
			}
			if preset.Mode != tt.mode {
				t.Errorf("preset %q mode = %q, want %q", tt.name, preset.Mode, tt.mode)
			}
			if GetPreset(tt.name) != preset {
				t.Errorf("preset %q should be cached", tt.name)
			}
		})
	}

	if GetPreset("lenient") != nil {
		t.Error("unknown preset should return nil")
	}
}

func TestListPresetNames(t *testing.T) {
	if got := ListPresetNames(); !reflect.DeepEqual(got, []string{"baseline", "strict"}) {
		t.Errorf("ListPresetNames() = %v", got)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.yaml")
	content := `
name: "Newsroom"
rules:
  - name: "no_akidah"
    expr: 'input.results.all(r, r.findings.all(f, f.category != "akidah_violations"))'
    failure_msg: "Creed violations are never published"
    control_refs:
      - "Garis_Panduan_Akidah_JAKIM.pdf"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Mode != models.PolicyModeStrict {
		t.Errorf("mode should default to strict, got %q", config.Mode)
	}
	if len(config.Rules) != 1 || len(config.Rules[0].ControlRefs) != 1 {
		t.Errorf("unexpected rules: %+v", config.Rules)
	}
}

func TestLoad_Preset(t *testing.T) {
	config, err := Load("baseline")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config != GetPreset("baseline") {
		t.Error("Load should return the cached preset")
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "unknown gate") {
		t.Errorf("expected unknown gate error, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no rules", "name: x\nrules: []\n", "at least one rule"},
		{"bad mode", "mode: lax\nrules:\n  - name: a\n    expr: 'true'\n", "invalid gate mode"},
		{"duplicate", "rules:\n  - name: a\n    expr: 'true'\n  - name: a\n    expr: 'true'\n", "duplicate rule name"},
		{"unnamed", "rules:\n  - expr: 'true'\n", "has no name"},
		{"bad severity", "rules:\n  - name: a\n    expr: 'true'\n    severity: fatal\n", "invalid severity"},
		{"bad yaml", "rules: [", "failed to parse gate YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

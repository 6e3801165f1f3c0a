// Package policy evaluates CEL release gates over a validation run and ships
// the built-in gate presets.
package policy

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/patuh/patuh/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

var (
	presetMu    sync.Mutex
	presetCache = map[string]*models.PolicyConfig{}
)

var presetFiles = map[string]string{
	"baseline": "presets/baseline.yaml",
	"strict":   "presets/strict.yaml",
}

// GetPreset returns a gate preset by name, or nil if not found
func GetPreset(name string) *models.PolicyConfig {
	presetMu.Lock()
	defer presetMu.Unlock()

	if cached, ok := presetCache[name]; ok {
		return cached
	}

	path, ok := presetFiles[name]
	if !ok {
		return nil
	}
	data, err := presetFS.ReadFile(path)
	if err != nil {
		return nil
	}
	config, err := Parse(data)
	if err != nil {
		return nil
	}

	presetCache[name] = config
	return config
}

// ListPresetNames returns the names of all available presets, sorted
func ListPresetNames() []string {
	names := make([]string, 0, len(presetFiles))
	for name := range presetFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustGetPreset returns a preset or panics (for tests)
func MustGetPreset(name string) *models.PolicyConfig {
	p := GetPreset(name)
	if p == nil {
		panic(fmt.Sprintf("preset %q not found", name))
	}
	return p
}

// Load resolves a --gate value: a preset name or a YAML file path.
func Load(nameOrPath string) (*models.PolicyConfig, error) {
	if p := GetPreset(nameOrPath); p != nil {
		return p, nil
	}

	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("unknown gate %q (presets: baseline, strict; or a YAML file path)", nameOrPath)
		}
		return nil, fmt.Errorf("failed to read gate file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a gate definition.
func Parse(data []byte) (*models.PolicyConfig, error) {
	var config models.PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse gate YAML: %w", err)
	}

	if len(config.Rules) == 0 {
		return nil, fmt.Errorf("gate must have at least one rule")
	}

	switch config.Mode {
	case "":
		config.Mode = models.PolicyModeStrict
	case models.PolicyModeWarn, models.PolicyModeStrict:
	default:
		return nil, fmt.Errorf("invalid gate mode %q (want warn or strict)", config.Mode)
	}

	seen := make(map[string]bool, len(config.Rules))
	for i, rule := range config.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d has no name", i)
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = true

		switch rule.Severity {
		case "", models.PolicySeverityWarn, models.PolicySeverityError:
		default:
			return nil, fmt.Errorf("rule %q: invalid severity %q (want warn or error)", rule.Name, rule.Severity)
		}
	}
	return &config, nil
}

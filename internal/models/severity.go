package models

import (
	"fmt"
	"strings"
)

// Severity is totally ordered: Medium < High < Critical.
type Severity int

const (
	SeverityMedium Severity = iota + 1
	SeverityHigh
	SeverityCritical
)

// AllSeverities in ascending order
var AllSeverities = []Severity{SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared levels.
func (s Severity) Valid() bool {
	return s >= SeverityMedium && s <= SeverityCritical
}

// ParseSeverity from string (case-insensitive)
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("invalid severity: %q (use medium, high, or critical)", s)
	}
}

// MarshalText implements encoding.TextMarshaler (used by json and yaml).
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MaxSeverity of findings, or 0 when empty
func MaxSeverity(findings []Finding) Severity {
	var max Severity
	for _, f := range findings {
		if f.Severity > max {
			max = f.Severity
		}
	}
	return max
}

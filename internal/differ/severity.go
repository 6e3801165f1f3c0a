package differ

import "fmt"

// SeverityLevel rates how much a catalog change weakens enforcement.
type SeverityLevel int

const (
	SeverityInfo SeverityLevel = iota
	SeverityModerate
	SeverityCritical
)

var severityNames = [...]string{
	SeverityInfo:     "info",
	SeverityModerate: "moderate",
	SeverityCritical: "critical",
}

func (s SeverityLevel) String() string {
	if s < SeverityInfo || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s SeverityLevel) MarshalText() ([]byte, error) {
	if s < SeverityInfo || s > SeverityCritical {
		return nil, fmt.Errorf("invalid drift severity %d", int(s))
	}
	return []byte(severityNames[s]), nil
}

// ParseSeverityLevel accepts the names produced by String.
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	for i, name := range severityNames {
		if name == s {
			return SeverityLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown drift severity %q (want info, moderate or critical)", s)
}

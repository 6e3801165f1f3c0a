package compliance

import (
	"strings"

	"github.com/patuh/patuh/internal/models"
)

// SeveritySet is the set of severities that block compliance for a validator.
type SeveritySet uint8

// NewSeveritySet from levels
func NewSeveritySet(levels ...models.Severity) SeveritySet {
	var s SeveritySet
	for _, l := range levels {
		if l.Valid() {
			s |= 1 << uint(l)
		}
	}
	return s
}

// AtOrAbove returns every severity >= min.
func AtOrAbove(min models.Severity) SeveritySet {
	var levels []models.Severity
	for _, l := range models.AllSeverities {
		if l >= min {
			levels = append(levels, l)
		}
	}
	return NewSeveritySet(levels...)
}

// Contains level
func (s SeveritySet) Contains(level models.Severity) bool {
	return level.Valid() && s&(1<<uint(level)) != 0
}

func (s SeveritySet) String() string {
	var names []string
	for _, l := range models.AllSeverities {
		if s.Contains(l) {
			names = append(names, l.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Blocking sets per validator.
var (
	blockOnCritical = NewSeveritySet(models.SeverityCritical)
	blockOnHigh     = AtOrAbove(models.SeverityHigh)
	blockOnAny      = AtOrAbove(models.SeverityMedium)
)

// Aggregate reports compliance: true iff no finding has a blocking severity.
func Aggregate(findings []models.Finding, blocking SeveritySet) bool {
	for _, f := range findings {
		if blocking.Contains(f.Severity) {
			return false
		}
	}
	return true
}

package models

import "time"

// Action is a machine-actionable tag on a finding.
type Action string

const (
	ActionNone                 Action = ""
	ActionBlockOrReview        Action = "block_or_review"
	ActionBlockImmediately     Action = "block_immediately"
	ActionRequirePermission    Action = "require_permission"
	ActionRequireMyHadithCheck Action = "require_myhadith_check"
)

// Finding is one occurrence of a rule violation.
// Term holds the matched catalog term, or the check name for structured validators.
type Finding struct {
	Category     string   `json:"category"`
	Term         string   `json:"term"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message,omitempty"`
	Action       Action   `json:"action,omitempty"`
	GuidelineRef string   `json:"guideline_ref,omitempty"`
	RequiredText string   `json:"required_text,omitempty"`
	Link         string   `json:"link,omitempty"`
}

// Validator identities
const (
	ValidatorText         = "text_scanner"
	ValidatorCitation     = "citation"
	ValidatorAuthenticity = "authenticity"
	ValidatorGenerated    = "generated_text"
	ValidatorThematic     = "thematic"
)

// ValidationResult is the verdict plus its findings in insertion order.
type ValidationResult struct {
	IsCompliant      bool      `json:"is_compliant"`
	Findings         []Finding `json:"findings"`
	ReviewedAt       time.Time `json:"reviewed_at"`
	Validator        string    `json:"validator"`
	ValidatorVersion string    `json:"validator_version"`
	CatalogVersion   string    `json:"catalog_version"`
	ContentType      string    `json:"content_type,omitempty"`

	// validator-specific metadata
	RequiredAttribution *Source `json:"required_attribution,omitempty"`
	Recommendation      string  `json:"recommendation,omitempty"`
	VerificationURL     string  `json:"verification_url,omitempty"`
	RequiredDisclaimer  string  `json:"required_disclaimer,omitempty"`
	FatwaURL            string  `json:"efatwa_link,omitempty"`
	AuditLogRequired    bool    `json:"audit_log_required,omitempty"`
	GuidelineRef        string  `json:"guideline_ref,omitempty"`
}

// CountBySeverity tallies findings per level.
func (r *ValidationResult) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, len(AllSeverities))
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

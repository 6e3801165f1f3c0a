// Package ingest turns content files into validation submissions: glob
// expansion, kind detection by file suffix, record decoding and HTML to
// text conversion.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/models"
	"gopkg.in/yaml.v3"
)

// Kind selects the validator for a submission.
type Kind string

const (
	KindText     Kind = "text"
	KindCitation Kind = "citation"
	KindSaying   Kind = "saying"
	KindPolicy   Kind = "policy"
	KindTheme    Kind = "theme"
)

// Kinds in display order
var Kinds = []Kind{KindText, KindCitation, KindSaying, KindPolicy, KindTheme}

// ParseKind from string
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown submission kind %q", s)
}

// IsRecord reports whether the kind carries a structured record rather than text.
func (k Kind) IsRecord() bool {
	return k == KindCitation || k == KindSaying
}

// Validator identity reported on results of this kind
func (k Kind) Validator() string {
	switch k {
	case KindCitation:
		return models.ValidatorCitation
	case KindSaying:
		return models.ValidatorAuthenticity
	case KindPolicy:
		return models.ValidatorGenerated
	case KindTheme:
		return models.ValidatorThematic
	}
	return models.ValidatorText
}

// Item is one decoded submission.
type Item struct {
	Source      string
	Kind        Kind
	ContentType string
	Text        string
	Citation    *models.ScriptureCitation
	Saying      *models.AttributedSaying
}

// Expand resolves glob patterns (with ** support) to a sorted, deduplicated
// list of regular files. A pattern that matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.New("at least one path or pattern is required")
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Clean(pattern))
		if err != nil {
			return nil, fmt.Errorf("glob error for %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", m, err)
			}
			if !info.Mode().IsRegular() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// KindOf infers the submission kind from a file name: foo.citation.yaml,
// foo.saying.json, foo.policy.txt and foo.theme.md select their validators;
// anything else is scanned as text.
func KindOf(path string) Kind {
	base := strings.ToLower(filepath.Base(path))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, k := range []Kind{KindCitation, KindSaying, KindPolicy, KindTheme} {
		if strings.HasSuffix(stem, "."+string(k)) {
			return k
		}
	}
	return KindText
}

// IsHTML reports whether the file should be converted before scanning.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// LoadFile reads and decodes one content file.
func LoadFile(path string) (*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	kind := KindOf(path)
	if kind.IsRecord() {
		item, err := DecodeRecord(kind, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		item.Source = path
		return item, nil
	}

	text := string(data)
	if IsHTML(path) {
		if text, err = HTMLToText(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &Item{Source: path, Kind: kind, Text: text}, nil
}

// DecodeRecord parses a YAML or JSON record. Unknown fields are rejected.
func DecodeRecord(kind Kind, data []byte) (*Item, error) {
	item := &Item{Kind: kind}
	var target any
	switch kind {
	case KindCitation:
		item.Citation = &models.ScriptureCitation{}
		target = item.Citation
	case KindSaying:
		item.Saying = &models.AttributedSaying{}
		target = item.Saying
	default:
		return nil, fmt.Errorf("kind %q has no record form", kind)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty %s record", kind)
		}
		return nil, fmt.Errorf("failed to parse %s record: %w", kind, err)
	}
	return item, nil
}

// Validate dispatches the item to its validator.
func Validate(e *compliance.Engine, item *Item) (*models.ValidationResult, error) {
	if item == nil {
		return nil, fmt.Errorf("nil item: %w", compliance.ErrInvalidInput)
	}
	switch item.Kind {
	case KindText:
		return e.ValidateText(item.Text, item.ContentType)
	case KindCitation:
		return e.ValidateCitation(item.Citation)
	case KindSaying:
		return e.ValidateSaying(item.Saying)
	case KindPolicy:
		return e.ValidatePolicy(item.Text)
	case KindTheme:
		return e.ValidateTheme(item.Text)
	}
	return nil, fmt.Errorf("unknown submission kind %q: %w", item.Kind, compliance.ErrInvalidInput)
}

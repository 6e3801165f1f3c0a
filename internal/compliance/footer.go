package compliance

import (
	"fmt"
	"sort"
	"strings"
)

const footerRule = "━━━━━━━━━━━━━━━━━━━━━━"

// RenderAttributionFooter returns the disclosure block for a content type
// (quran, hadith, fatwa, tafsir). Pure template; no validation.
func (e *Engine) RenderAttributionFooter(contentType string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(contentType))
	src, ok := e.catalog.SourceFor(key)
	if !ok {
		return "", fmt.Errorf("%w: %q (known: %s)", ErrUnknownContentType, contentType, strings.Join(e.ContentTypes(), ", "))
	}

	f := e.catalog.Footer
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(footerRule + "\n")
	sb.WriteString("📚 SUMBER: " + src.Text + "\n")
	if src.URL != "" {
		sb.WriteString("🔗 " + src.URL + "\n")
	}
	if len(f.Disclaimer) > 0 || len(f.AuthorityLinks) > 0 {
		sb.WriteString("\n⚠️ DISCLAIMER:\n")
		for _, line := range f.Disclaimer {
			sb.WriteString(line + "\n")
		}
		for _, link := range f.AuthorityLinks {
			sb.WriteString("• " + link + "\n")
		}
	}
	if f.ComplianceNote != "" {
		sb.WriteString("\n📱 " + f.ComplianceNote + "\n")
	}
	return sb.String(), nil
}

// ContentTypes accepted by RenderAttributionFooter, sorted.
func (e *Engine) ContentTypes() []string {
	names := make([]string, 0, len(e.catalog.Sources))
	for name := range e.catalog.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

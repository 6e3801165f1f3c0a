package differ

import (
	"fmt"
	"strings"

	"github.com/patuh/patuh/internal/models"
	"github.com/wI2L/jsondiff"
)

// detectionLists catch violations; shrinking them weakens enforcement.
var detectionLists = map[string]bool{
	"ruling_terms": true,
	"deny_terms":   true,
}

// allowanceLists excuse content; growing them weakens enforcement.
var allowanceLists = map[string]bool{
	"redirection_phrases": true,
	"authority_markers":   true,
	"citation_markers":    true,
	"canon_markers":       true,
}

func translate(op jsondiff.Operation, oldDoc map[string]any) (DriftItem, bool) {
	tokens := splitPointer(op.Path)
	if len(tokens) == 0 {
		return DriftItem{}, false
	}

	item := DriftItem{Op: op.Type, Path: op.Path}
	switch tokens[0] {
	case "version":
		item.Severity = SeverityInfo
		item.Message = fmt.Sprintf("Catalog version changed to %v.", op.Value)
	case "categories":
		item.Severity, item.Message = translateCategory(op, tokens[1:], oldDoc)
	case "sources":
		item.Severity, item.Message = translateSource(op, tokens[1:])
	case "generated_text", "thematic":
		item.Severity, item.Message = translatePolicy(op, tokens)
	case "footer":
		item.Severity = SeverityInfo
		item.Message = "Footer text updated."
	default:
		item.Severity = SeverityModerate
		item.Message = fmt.Sprintf("Setting '%s' changed.", strings.Join(tokens, "."))
	}
	return item, true
}

func translateCategory(op jsondiff.Operation, tokens []string, oldDoc map[string]any) (SeverityLevel, string) {
	if len(tokens) == 0 {
		return SeverityCritical, "Category table replaced."
	}
	id := tokens[0]

	if len(tokens) == 1 {
		switch op.Type {
		case jsondiff.OperationAdd:
			return SeverityInfo, fmt.Sprintf("New category '%s' added.", id)
		case jsondiff.OperationRemove:
			return SeverityCritical, fmt.Sprintf("⚠️  CRITICAL: Category '%s' removed.", id)
		}
		return SeverityModerate, fmt.Sprintf("Category '%s' redefined.", id)
	}

	switch tokens[1] {
	case "terms":
		if len(tokens) < 3 {
			return SeverityModerate, fmt.Sprintf("Terms of '%s' replaced.", id)
		}
		term := tokens[2]
		if op.Type == jsondiff.OperationRemove {
			return SeverityCritical, fmt.Sprintf("⚠️  CRITICAL: Term '%s' removed from '%s'.", term, id)
		}
		return SeverityInfo, fmt.Sprintf("Term '%s' added to '%s'.", term, id)

	case "severity":
		oldSev, _ := lookup(oldDoc, "categories", id, "severity").(string)
		newSev, _ := op.Value.(string)
		from, errFrom := models.ParseSeverity(oldSev)
		to, errTo := models.ParseSeverity(newSev)
		if errFrom == nil && errTo == nil && to < from {
			return SeverityCritical, fmt.Sprintf("⚠️  CRITICAL: Severity of '%s' lowered from %s to %s.", id, from, to)
		}
		return SeverityModerate, fmt.Sprintf("Severity of '%s' changed from %s to %s.", id, oldSev, newSev)

	case "guideline_ref":
		return SeverityModerate, fmt.Sprintf("Guideline reference of '%s' changed.", id)

	case "description":
		return SeverityInfo, fmt.Sprintf("Documentation update for '%s'.", id)
	}
	return SeverityModerate, fmt.Sprintf("Category '%s' modified.", id)
}

func translateSource(op jsondiff.Operation, tokens []string) (SeverityLevel, string) {
	if len(tokens) == 0 {
		return SeverityCritical, "Source table replaced."
	}
	name := tokens[0]
	if len(tokens) == 1 {
		switch op.Type {
		case jsondiff.OperationAdd:
			return SeverityInfo, fmt.Sprintf("New source '%s' added.", name)
		case jsondiff.OperationRemove:
			return SeverityCritical, fmt.Sprintf("⚠️  CRITICAL: Required source '%s' removed.", name)
		}
	}
	return SeverityModerate, fmt.Sprintf("Attribution for '%s' changed.", name)
}

func translatePolicy(op jsondiff.Operation, tokens []string) (SeverityLevel, string) {
	section := tokens[0]
	if len(tokens) < 2 {
		return SeverityModerate, fmt.Sprintf("Section '%s' replaced.", section)
	}
	list := tokens[1]

	if len(tokens) >= 3 {
		term := tokens[2]
		switch {
		case detectionLists[list] && op.Type == jsondiff.OperationRemove:
			return SeverityCritical, fmt.Sprintf("⚠️  CRITICAL: '%s' no longer detected (%s.%s).", term, section, list)
		case detectionLists[list]:
			return SeverityInfo, fmt.Sprintf("'%s' now detected (%s.%s).", term, section, list)
		case allowanceLists[list] && op.Type == jsondiff.OperationAdd:
			return SeverityModerate, fmt.Sprintf("'%s' now accepted (%s.%s).", term, section, list)
		case allowanceLists[list]:
			return SeverityModerate, fmt.Sprintf("'%s' no longer accepted (%s.%s).", term, section, list)
		}
	}

	if strings.HasSuffix(list, "disclaimer") {
		return SeverityModerate, fmt.Sprintf("Mandatory disclaimer text changed (%s.%s).", section, list)
	}
	return SeverityModerate, fmt.Sprintf("Setting '%s.%s' changed.", section, list)
}

// splitPointer decodes an RFC 6901 pointer into its reference tokens.
func splitPointer(p string) []string {
	if p == "" || p == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

func lookup(doc map[string]any, keys ...string) any {
	var cur any = doc
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

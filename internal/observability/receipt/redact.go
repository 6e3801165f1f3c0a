package receipt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// sensitiveFlags carry credentials; their values are replaced outright.
var sensitiveFlags = map[string]bool{
	"token":        true,
	"password":     true,
	"secret":       true,
	"api-key":      true,
	"apikey":       true,
	"auth":         true,
	"bearer":       true,
	"otel-headers": true,
	"access-token": true,
	"private-key":  true,
}

// contentFlags carry the submitted material itself. Receipts record that
// content was supplied, not what it said.
var contentFlags = map[string]bool{
	"text": true,
}

var sensitivePrefixes = []string{
	"sk-",
	"ghp_",
	"github_pat_",
	"xoxb-",
	"AKIA",
	"ya29.",
	"AIza",
}

var jwtRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}$`)

var longSecretRegex = regexp.MustCompile(`^[A-Za-z0-9+/=_-]{32,}$`)

const redactedValue = "[REDACTED]"

// RedactArgs sanitizes CLI arguments before they are stored in a receipt.
// Returns the redacted args and whether anything was changed.
func RedactArgs(args []string) ([]string, bool) {
	if len(args) == 0 {
		return args, false
	}

	redacted := make([]string, len(args))
	changed := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// --flag=value
		if eq := strings.Index(arg, "="); eq > 0 && strings.HasPrefix(arg, "-") {
			flag := flagName(arg[:eq])
			if v, ok := redactFlagValue(flag, arg[eq+1:]); ok {
				redacted[i] = arg[:eq+1] + v
				changed = true
				continue
			}
			redacted[i] = arg
			continue
		}

		// --flag value
		if strings.HasPrefix(arg, "-") && i+1 < len(args) {
			flag := flagName(arg)
			if v, ok := redactFlagValue(flag, args[i+1]); ok {
				redacted[i] = arg
				i++
				redacted[i] = v
				changed = true
				continue
			}
		}

		if isSensitiveValue(arg) {
			redacted[i] = redactedValue
			changed = true
			continue
		}

		redacted[i] = arg
	}

	return redacted, changed
}

// redactFlagValue returns the replacement for a flag's value, if any.
func redactFlagValue(flag, value string) (string, bool) {
	switch {
	case sensitiveFlags[flag]:
		return redactedValue, true
	case contentFlags[flag]:
		return fmt.Sprintf("[CONTENT %d chars]", utf8.RuneCountInString(value)), true
	case isSensitiveValue(value):
		return redactedValue, true
	}
	return "", false
}

func flagName(s string) string {
	s = strings.TrimPrefix(s, "--")
	s = strings.TrimPrefix(s, "-")
	return strings.ToLower(s)
}

func isSensitiveValue(value string) bool {
	for _, prefix := range sensitivePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	if jwtRegex.MatchString(value) {
		return true
	}
	// paths and URLs contain / or . and are never treated as secrets
	if len(value) >= 32 && !strings.ContainsAny(value, "/.") {
		return longSecretRegex.MatchString(value)
	}
	return false
}

package ingest

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
)

var converter = newConverter()

func newConverter() *md.Converter {
	c := md.NewConverter("", true, nil)
	c.Use(plugin.GitHubFlavored())
	return c
}

// HTMLToText converts an HTML page to markdown so that the scanner sees the
// visible text and not the markup. Scripts and styles are dropped.
func HTMLToText(data []byte) (string, error) {
	cleaned := scriptRe.ReplaceAllString(string(data), "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	out, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	out = excessiveLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// stripHTML flattens markup into plain text, collapsing runs of
// whitespace. Feed snippets arrive as rendered HTML fragments.
func stripHTML(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.TrimSpace(content)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(content))
	var parts []string

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}
		if tokenType == html.TextToken {
			if text := strings.TrimSpace(tokenizer.Token().Data); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return strings.Join(parts, " ")
}

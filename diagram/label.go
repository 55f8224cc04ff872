package diagram

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanLabel strips markup tags from a shape label, decodes HTML entities
// (&amp; &lt; &gt; &nbsp; &#10; and friends), and collapses all runs of
// whitespace to single spaces.
func CleanLabel(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tz.Text())
		}
	}

	// The tokenizer decodes &nbsp; to U+00A0 and &#10; to a newline; both
	// count as whitespace for Fields.
	return strings.Join(strings.Fields(b.String()), " ")
}

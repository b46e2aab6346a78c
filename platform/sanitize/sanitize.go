// Package sanitize cleans user-provided text before storage or prompting.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes HTML tags, including ones hidden behind entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes listing fields such as product names and descriptions.
func Text(s string) string {
	return StripHTML(s)
}

// ForPrompt drops control characters (newlines and tabs survive) and caps
// the rune length so seller text cannot swamp a provider prompt.
func ForPrompt(s string, maxRunes int) string {
	var sb strings.Builder
	count := 0
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		if maxRunes > 0 && count >= maxRunes {
			sb.WriteString("...")
			break
		}
		sb.WriteRune(r)
		count++
	}
	return strings.TrimSpace(sb.String())
}

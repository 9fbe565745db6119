package content

import (
	"regexp"
	"strings"
)

var (
	markdownHardBreak = regexp.MustCompile(`[ \t]{2,}\r?\n`)
	htmlLineBreak     = regexp.MustCompile(`(?i)<br\s*/?>`)
	horizontalSpace   = regexp.MustCompile(`[ \t]+`)

	lineBreaks = strings.NewReplacer(
		"\r\n", " ",
		"\r", " ",
		"\n", " ",
		"\u2028", " ",
		"\u2029", " ",
	)
)

// NormalizeLineBreaks collapses the incidental line breaks models put between
// phrases so each run of prose between code fences becomes one paragraph.
//
// Fenced code is copied byte for byte. Text with no line breaks and no <br>
// tags is returned unchanged.
func NormalizeLineBreaks(text string) string {
	if text == "" {
		return text
	}
	if !hasLineBreak(text) && !htmlLineBreak.MatchString(text) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range ScanFences(text) {
		if tok.Kind == TokenCodeFence {
			b.WriteString(tok.Raw)
			continue
		}
		b.WriteString(collapseProse(tok.Text))
	}
	return b.String()
}

func collapseProse(part string) string {
	part = markdownHardBreak.ReplaceAllLiteralString(part, " ")
	part = htmlLineBreak.ReplaceAllLiteralString(part, " ")
	part = lineBreaks.Replace(part)
	part = horizontalSpace.ReplaceAllLiteralString(part, " ")
	return trim(part)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n\u2028\u2029")
}

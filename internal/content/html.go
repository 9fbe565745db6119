package content

import (
	"html"
	"strings"
)

// RenderHTML renders blocks as an HTML fragment. All text and attributes are
// escaped.
func RenderHTML(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		if blk.Kind == SegmentCode {
			b.WriteString("<pre><code")
			if blk.Lang != "" {
				b.WriteString(` class="language-`)
				b.WriteString(html.EscapeString(blk.Lang))
				b.WriteString(`"`)
			}
			b.WriteString(">")
			b.WriteString(html.EscapeString(blk.Text))
			b.WriteString("</code></pre>\n")
			continue
		}
		b.WriteString("<p>")
		for _, n := range blk.Nodes {
			writeNodeHTML(&b, n)
		}
		b.WriteString("</p>\n")
	}
	return b.String()
}

func writeNodeHTML(b *strings.Builder, n Node) {
	text := html.EscapeString(n.Text)
	switch n.Kind {
	case NodeBold:
		b.WriteString("<strong>" + text + "</strong>")
	case NodeCode:
		b.WriteString("<code>" + text + "</code>")
	case NodeLink:
		b.WriteString(`<a href="` + html.EscapeString(n.Href) + `" target="_blank" rel="noopener noreferrer">` + text + "</a>")
	default:
		b.WriteString(text)
	}
}

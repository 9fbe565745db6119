package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/iksnae/govchat/internal/content"
)

const (
	wrapWidth = 80

	// defaultTerminalWidth is used when the terminal size is unknown
	defaultTerminalWidth = 80
)

var (
	boldStyle = lipgloss.NewStyle().Bold(true)

	inlineCodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	codeLangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// renderTerminal renders answer text for the terminal. With color off the
// output is plain text: bold and code markers are dropped and links are
// shown as "text (href)".
func renderTerminal(text string, color bool) string {
	blocks := content.Render(text)
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		if blk.Kind == content.SegmentCode {
			parts = append(parts, renderCodeBlock(blk, color))
			continue
		}
		parts = append(parts, wrapText(renderNodes(blk.Nodes, color), wrapWidth))
	}
	return strings.Join(parts, "\n\n")
}

func renderNodes(nodes []content.Node, color bool) string {
	var b strings.Builder
	for _, n := range nodes {
		switch {
		case n.Kind == content.NodeLink:
			if color {
				b.WriteString(linkStyle.Render(n.Text) + " " + n.Href)
			} else {
				b.WriteString(n.Text + " (" + n.Href + ")")
			}
		case !color:
			b.WriteString(n.Text)
		case n.Kind == content.NodeBold:
			b.WriteString(boldStyle.Render(n.Text))
		case n.Kind == content.NodeCode:
			b.WriteString(inlineCodeStyle.Render(n.Text))
		default:
			b.WriteString(n.Text)
		}
	}
	return b.String()
}

func renderCodeBlock(blk content.Block, color bool) string {
	code := blk.Text
	if color {
		code = highlightCode(code, blk.Lang)
	}
	var header string
	switch {
	case blk.Lang != "" && color:
		header = codeLangStyle.Render(blk.Lang) + "\n"
	case blk.Lang != "":
		header = "[" + blk.Lang + "]\n"
	}
	if blk.Provisional {
		code += "\n…"
	}
	return header + indent(code, "    ")
}

// highlightCode applies terminal syntax highlighting, returning code
// unchanged when it cannot be highlighted
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// wrapText wraps lines wider than width at word boundaries, measuring
// display width so wide characters are counted correctly
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if runewidth.StringWidth(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if currentLine == "" {
				currentLine = word
				continue
			}
			if runewidth.StringWidth(currentLine)+runewidth.StringWidth(word)+1 > width {
				wrapped = append(wrapped, currentLine)
				currentLine = word
				continue
			}
			currentLine += " " + word
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

// truncate shortens s to at most width display columns
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// terminalWidth returns the width of the terminal on stdout
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// terminalRows counts the screen rows text occupies when printed at width
func terminalRows(text string, width int) int {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(line)
		if w == 0 {
			rows++
			continue
		}
		rows += (w + width - 1) / width
	}
	return rows
}

// clearPrinted erases text that was just printed, leaving the cursor where
// the text started
func clearPrinted(out io.Writer, text string, width int) {
	if text == "" {
		return
	}
	if up := terminalRows(text, width) - 1; up > 0 {
		_, _ = fmt.Fprintf(out, "\r\033[%dA\033[J", up)
		return
	}
	_, _ = fmt.Fprint(out, "\r\033[J")
}

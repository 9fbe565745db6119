package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
)

// MarkdownExporter exports chats in Markdown format
type MarkdownExporter struct {
	opts options
}

// Export exports a chat to Markdown format
func (e *MarkdownExporter) Export(chat *internal.ChatData, w io.Writer) error {
	name := chat.Name
	if name == "" {
		name = internal.DefaultChatName
	}

	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(name))
	if e.opts.brand.Name != "" {
		_, _ = fmt.Fprintf(w, "**Assistant:** %s  \n", e.opts.brand.Name)
	}
	_, _ = fmt.Fprintf(w, "**Chat:** %s  \n", chat.ID)
	_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", internal.FormatDate(chat.Timestamp))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(chat.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range chat.Messages {
		speaker := msg.Name
		if internal.IsUserMessage(msg) {
			speaker = "You"
		}
		text := internal.MessageContent(msg.Data, e.opts.resolver)

		_, err := fmt.Fprintf(w, "**%s:** (%s)\n\n%s\n\n", speaker, internal.FormatDate(msg.Timestamp), blocksToMarkdown(content.Render(text)))
		if err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(chat.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// blocksToMarkdown writes rendered blocks back out as Markdown, turning
// reference anchors into Markdown links
func blocksToMarkdown(blocks []content.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		if blk.Kind == content.SegmentCode {
			parts = append(parts, "```"+blk.Lang+"\n"+blk.Text+"\n```")
			continue
		}
		var b strings.Builder
		for _, n := range blk.Nodes {
			switch n.Kind {
			case content.NodeBold:
				b.WriteString("**" + n.Text + "**")
			case content.NodeCode:
				b.WriteString("`" + n.Text + "`")
			case content.NodeLink:
				b.WriteString("[" + n.Text + "](" + n.Href + ")")
			default:
				b.WriteString(escapeMarkdown(n.Text))
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// escapeMarkdown escapes emphasis markers that would otherwise render
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	return strings.ReplaceAll(text, "__", "\\_\\_")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

package export

import (
	"fmt"
	"html"
	"io"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
)

// HTMLExporter exports chats as a standalone HTML page
type HTMLExporter struct {
	opts options
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
header { border-bottom: 3px solid %s; margin-bottom: 1rem; }
.message { margin: 1rem 0; }
.message.user { text-align: right; }
.meta { color: #888; font-size: 0.8rem; }
pre { background: #f4f4f4; padding: 0.5rem; overflow-x: auto; }
</style>
</head>
<body>
`

// Export exports a chat to HTML format
func (e *HTMLExporter) Export(chat *internal.ChatData, w io.Writer) error {
	name := chat.Name
	if name == "" {
		name = internal.DefaultChatName
	}
	color := e.opts.brand.Color
	if color == "" {
		color = "#000000"
	}

	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(name), html.EscapeString(color)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	_, _ = fmt.Fprintf(w, "<header><h1>%s</h1>", html.EscapeString(name))
	if e.opts.brand.Name != "" {
		_, _ = fmt.Fprintf(w, "<p class=\"meta\">%s</p>", html.EscapeString(e.opts.brand.Name))
	}
	_, _ = fmt.Fprintf(w, "</header>\n")

	for _, msg := range chat.Messages {
		class := "assistant"
		if internal.IsUserMessage(msg) {
			class = "user"
		}
		text := internal.MessageContent(msg.Data, e.opts.resolver)

		_, err := fmt.Fprintf(w, "<section class=\"message %s\">\n<p class=\"meta\">%s &middot; %s</p>\n%s</section>\n",
			class,
			html.EscapeString(msg.Name),
			html.EscapeString(internal.FormatDate(msg.Timestamp)),
			content.RenderHTML(content.Render(text)))
		if err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	_, err := fmt.Fprintf(w, "</body>\n</html>\n")
	return err
}

// Extension returns the file extension for this format
func (e *HTMLExporter) Extension() string {
	return "html"
}

package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/govchat/internal"
)

// JSONExporter exports chats in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a chat to JSON format
func (e *JSONExporter) Export(chat *internal.ChatData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(chat)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

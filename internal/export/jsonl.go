package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/govchat/internal"
)

// JSONLExporter exports chats in JSONL format, one memory entry per line
type JSONLExporter struct{}

// Export writes the chat's conversation memory, one message per line
func (e *JSONLExporter) Export(chat *internal.ChatData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	memory := internal.GenerateMessagesMemory(chat.Messages)
	for i, entry := range memory {
		msg := chat.Messages[i]
		obj := map[string]interface{}{
			"name":    entry.Name,
			"message": entry.Message,
			"speaker": msg.Name,
		}
		if msg.Timestamp != 0 {
			obj["timestamp"] = msg.Timestamp
		}
		if len(msg.Data.URLSupporting) > 0 {
			obj["url_supporting"] = msg.Data.URLSupporting
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

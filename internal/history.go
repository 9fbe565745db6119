package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	historyKey    = "chatHistory"
	chatKeyPrefix = "chat-"
)

// History persists chats under a single key as a JSON object mapping
// "chat-<id>" to the chat's messages. Every save overwrites the whole value,
// so concurrent writers are last-writer-wins.
type History struct {
	store KeyValueStore
}

// NewHistory creates a History over store
func NewHistory(store KeyValueStore) *History {
	return &History{store: store}
}

// historyEntry is one member of the stored object, kept in document order
type historyEntry struct {
	key      string
	messages []Message
}

// Save writes all chats that have at least one message
func (h *History) Save(chats []ChatData) error {
	var entries []historyEntry
	for _, chat := range chats {
		if len(chat.Messages) == 0 {
			continue
		}
		entries = putEntry(entries, chatKeyPrefix+chat.ID, chat.Messages)
	}

	data, err := encodeHistory(entries)
	if err != nil {
		return &ParseError{Source: historyKey, Key: historyKey, Err: err}
	}
	if err := h.store.SetItem(historyKey, data); err != nil {
		return err
	}
	LogDebug("Saved %d chats to %s", len(entries), historyKey)
	return nil
}

// Load reads stored chats, most recent first. Names and timestamps are
// rebuilt from the messages. A value that is not a valid history object is
// reported as *ParseError and left untouched in storage.
func (h *History) Load() ([]ChatData, error) {
	entries, err := h.read()
	if err != nil {
		return nil, err
	}

	chats := make([]ChatData, 0, len(entries))
	for _, e := range entries {
		messages := e.messages
		if messages == nil {
			messages = []Message{}
		}
		var first int64
		if len(messages) > 0 {
			first = messages[0].Timestamp
		}
		chats = append(chats, ChatData{
			ID:        strings.TrimPrefix(e.key, chatKeyPrefix),
			Name:      GetChatName(messages),
			Messages:  messages,
			Timestamp: GetValidTimestamp(first),
		})
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].Timestamp > chats[j].Timestamp
	})
	return chats, nil
}

// Remove deletes one chat from storage. Nothing is written when no history
// is stored or the chat is not in it.
func (h *History) Remove(chatID string) error {
	entries, err := h.read()
	if err != nil {
		return err
	}

	idx := findEntry(entries, chatKeyPrefix+chatID)
	if idx < 0 {
		idx = findEntry(entries, chatID)
	}
	if idx < 0 {
		LogDebug("Chat %s not in stored history", chatID)
		return nil
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	data, err := encodeHistory(entries)
	if err != nil {
		return &ParseError{Source: historyKey, Key: historyKey, Err: err}
	}
	return h.store.SetItem(historyKey, data)
}

// Reset deletes the stored history
func (h *History) Reset() error {
	return h.store.RemoveItem(historyKey)
}

func (h *History) read() ([]historyEntry, error) {
	raw, ok, err := h.store.GetItem(historyKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	entries, err := decodeHistory(raw)
	if err != nil {
		return nil, &ParseError{Source: historyKey, Key: historyKey, Err: err}
	}
	return entries, nil
}

func findEntry(entries []historyEntry, key string) int {
	for i, e := range entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

// putEntry sets key, replacing the value in place when key already exists
func putEntry(entries []historyEntry, key string, messages []Message) []historyEntry {
	if i := findEntry(entries, key); i >= 0 {
		entries[i].messages = messages
		return entries
	}
	return append(entries, historyEntry{key: key, messages: messages})
}

// decodeHistory parses the stored object preserving member order
func decodeHistory(raw string) ([]historyEntry, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var entries []historyEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var messages []Message
		if err := dec.Decode(&messages); err != nil {
			return nil, fmt.Errorf("chat %q: %w", key, err)
		}
		entries = putEntry(entries, key, messages)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after history object")
	}
	return entries, nil
}

func encodeHistory(entries []historyEntry) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(e.key); err != nil {
			return "", err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		messages := e.messages
		if messages == nil {
			messages = []Message{}
		}
		if err := enc.Encode(messages); err != nil {
			return "", err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// trimNewline drops the newline json.Encoder appends after each value
func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}

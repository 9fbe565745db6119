package internal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Data is the payload of a message: the answer text and the URLs the
// assistant cited for it
type Data struct {
	Answer        string   `json:"answer" yaml:"answer"`
	URLSupporting []string `json:"url_supporting" yaml:"url_supporting"`
}

// MarshalJSON always emits url_supporting as an array, never null
func (d Data) MarshalJSON() ([]byte, error) {
	type plain Data
	p := plain(d)
	if p.URLSupporting == nil {
		p.URLSupporting = []string{}
	}
	return json.Marshal(p)
}

// Message is one entry of a conversation.
// Timestamp is epoch milliseconds; 0 marks a missing or corrupt value.
type Message struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Data      Data   `json:"data" yaml:"data"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// UnmarshalJSON decodes a stored message, tolerating timestamps that were
// persisted as null, strings, NaN or fractional numbers
func (m *Message) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Data      *Data           `json:"data"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.ID = raw.ID
	m.Name = raw.Name
	m.Data = Data{}
	if raw.Data != nil {
		m.Data = *raw.Data
	}
	m.Timestamp = parseTimestamp(raw.Timestamp)
	return nil
}

func parseTimestamp(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// ChatData is a conversation. Name and Timestamp are derived from the
// messages whenever history is loaded.
type ChatData struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Messages  []Message `json:"messages" yaml:"messages"`
	Timestamp int64     `json:"timestamp" yaml:"timestamp"`
}

// MemoryEntry is the simplified role/message pair sent to the prediction
// backend as conversation memory
type MemoryEntry struct {
	Name    string `json:"name" yaml:"name"` // "chat" or "user"
	Message string `json:"message" yaml:"message"`
}

// Memory roles
const (
	RoleChat = "chat"
	RoleUser = "user"
)

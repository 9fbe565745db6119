package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/govchat/internal/content"
)

const (
	// DefaultChatName labels a chat that has no user message yet
	DefaultChatName = "New Chat"

	// AnonymousName is used for messages created without a speaker name
	AnonymousName = "anonymous"

	chatNameLimit = 30

	// maxDateMillis is the largest magnitude a browser Date accepts
	maxDateMillis = 8_640_000_000_000_000
)

// nowFunc is replaced in tests
var nowFunc = time.Now

func nowMillis() int64 {
	return nowFunc().UnixMilli()
}

// GenerateChatParams creates an empty chat whose id is prefix-<now>
func GenerateChatParams(prefix string) ChatData {
	now := nowMillis()
	return ChatData{
		ID:        fmt.Sprintf("%s-%d", prefix, now),
		Name:      DefaultChatName,
		Messages:  []Message{},
		Timestamp: now,
	}
}

// GenerateMessageParams creates a message for chatID stamped with the
// current time. An empty name is recorded as "anonymous".
func GenerateMessageParams(chatID string, data Data, name string) Message {
	if name == "" {
		name = AnonymousName
	}
	now := nowMillis()
	return Message{
		ID:        messageID(chatID, name, now),
		Name:      name,
		Data:      data,
		Timestamp: now,
	}
}

func messageID(chatID, name string, ts int64) string {
	return fmt.Sprintf("%s-message-%s-%d", chatID, name, ts)
}

// AddNewChat prepends a new empty chat, keeping most-recent-first order
func AddNewChat(chats []ChatData) []ChatData {
	out := make([]ChatData, 0, len(chats)+1)
	out = append(out, GenerateChatParams("chat"))
	return append(out, chats...)
}

// GetChatName derives a display name from the first message not sent by an
// assistant. The answer is cut to 30 characters with "..." appended when it
// is longer.
func GetChatName(messages []Message) string {
	for _, m := range messages {
		if IsAssistantName(m.Name) {
			continue
		}
		runes := []rune(m.Data.Answer)
		if len(runes) > chatNameLimit {
			return string(runes[:chatNameLimit]) + "..."
		}
		return m.Data.Answer
	}
	return DefaultChatName
}

// GetValidTimestamp returns ts, or the current time when ts is the 0
// sentinel left by a corrupt stored value
func GetValidTimestamp(ts int64) int64 {
	if ts == 0 {
		return nowMillis()
	}
	return ts
}

// GenerateMessagesMemory maps messages to the memory shape the prediction
// backend expects
func GenerateMessagesMemory(messages []Message) []MemoryEntry {
	memory := make([]MemoryEntry, 0, len(messages))
	for _, m := range messages {
		role := RoleUser
		if IsAssistantName(m.Name) {
			role = RoleChat
		}
		memory = append(memory, MemoryEntry{Name: role, Message: m.Data.Answer})
	}
	return memory
}

// MessageContent returns the text shown for a message. Answers with
// supporting URLs get a references block; others are only normalized.
func MessageContent(data Data, resolver *content.Resolver) string {
	if resolver == nil {
		resolver = content.DefaultResolver()
	}
	if len(data.URLSupporting) == 0 {
		return content.NormalizeLineBreaks(data.Answer)
	}
	return resolver.FormatAnswerWithReferences(data.Answer, data.URLSupporting)
}

// FormatDate formats an epoch-millisecond timestamp for display
func FormatDate(ts int64) string {
	if ts > maxDateMillis || ts < -maxDateMillis {
		return "Invalid date"
	}
	return time.UnixMilli(ts).Format("Jan 2, 2006 3:04 PM")
}

// IsUserMessage reports whether m was written by the user
func IsUserMessage(m Message) bool {
	return !IsAssistantName(strings.TrimSpace(m.Name))
}

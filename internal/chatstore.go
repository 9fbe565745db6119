package internal

import (
	"fmt"
)

// ChatStore is the session state of one client: the chats in memory and the
// selected chat. It is not safe for concurrent use.
type ChatStore struct {
	history  *History
	chats    []ChatData
	selected string
}

// NewChatStore creates an empty session over history
func NewChatStore(history *History) *ChatStore {
	return &ChatStore{history: history}
}

// Load replaces the session with the stored chats and selects the most
// recent one. On error the session is left unchanged.
func (s *ChatStore) Load() error {
	chats, err := s.history.Load()
	if err != nil {
		return err
	}
	s.chats = chats
	s.selected = ""
	if len(chats) > 0 {
		s.selected = chats[0].ID
	}
	LogDebug("Loaded %d chats", len(chats))
	return nil
}

// Chats returns the chats, most recent first
func (s *ChatStore) Chats() []ChatData {
	out := make([]ChatData, len(s.chats))
	copy(out, s.chats)
	return out
}

// Chat returns the chat with the given id
func (s *ChatStore) Chat(id string) (ChatData, error) {
	i := s.indexOf(id)
	if i < 0 {
		return ChatData{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	return s.chats[i], nil
}

// Selected returns the selected chat, if any
func (s *ChatStore) Selected() (ChatData, bool) {
	i := s.indexOf(s.selected)
	if i < 0 {
		return ChatData{}, false
	}
	return s.chats[i], true
}

// AddChat starts a new empty chat and selects it
func (s *ChatStore) AddChat() ChatData {
	s.chats = AddNewChat(s.chats)
	s.selected = s.chats[0].ID
	return s.chats[0]
}

// SelectChat makes id the selected chat
func (s *ChatStore) SelectChat(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	s.selected = id
	return nil
}

// RemoveChat drops a chat from the session and from storage. When the
// selected chat is removed the most recent remaining chat is selected.
func (s *ChatStore) RemoveChat(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	if err := s.history.Remove(id); err != nil {
		return err
	}

	s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
	if s.selected == id {
		s.selected = ""
		if len(s.chats) > 0 {
			s.selected = s.chats[0].ID
		}
	}
	return nil
}

// Message returns one message of a chat
func (s *ChatStore) Message(chatID, msgID string) (Message, error) {
	i := s.indexOf(chatID)
	if i < 0 {
		return Message{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	for _, m := range s.chats[i].Messages {
		if m.ID == msgID {
			return m, nil
		}
	}
	return Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, msgID)
}

// NewMessage creates a message for a chat with an id that chat does not use
// yet. A speaker sending twice within one millisecond gets the next free
// millisecond.
func (s *ChatStore) NewMessage(chatID string, data Data, name string) (Message, error) {
	i := s.indexOf(chatID)
	if i < 0 {
		return Message{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	msg := GenerateMessageParams(chatID, data, name)
	for hasMessage(s.chats[i].Messages, msg.ID) {
		msg.Timestamp++
		msg.ID = messageID(chatID, msg.Name, msg.Timestamp)
	}
	return msg, nil
}

// AppendMessage adds msg to the end of a chat. Message ids are unique within
// a chat.
func (s *ChatStore) AppendMessage(chatID string, msg Message) error {
	i := s.indexOf(chatID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	chat := &s.chats[i]
	if hasMessage(chat.Messages, msg.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateMessage, msg.ID)
	}

	chat.Messages = append(chat.Messages, msg)
	if len(chat.Messages) == 1 {
		chat.Timestamp = GetValidTimestamp(msg.Timestamp)
	}
	chat.Name = GetChatName(chat.Messages)
	return nil
}

// ReplaceMessage swaps in an edited message and drops everything after it,
// so the conversation can be resent from that point
func (s *ChatStore) ReplaceMessage(chatID string, msg Message) error {
	i := s.indexOf(chatID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	chat := &s.chats[i]
	for j, m := range chat.Messages {
		if m.ID != msg.ID {
			continue
		}
		messages := make([]Message, j+1)
		copy(messages, chat.Messages[:j])
		messages[j] = msg
		chat.Messages = messages
		if j == 0 {
			chat.Timestamp = GetValidTimestamp(msg.Timestamp)
		}
		chat.Name = GetChatName(chat.Messages)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMessageNotFound, msg.ID)
}

// Merge folds another snapshot of chats into the session
func (s *ChatStore) Merge(chats []ChatData) {
	s.chats = MergeChats(s.chats, chats)
	if s.selected == "" && len(s.chats) > 0 {
		s.selected = s.chats[0].ID
	}
}

// Flush saves the session's non-empty chats
func (s *ChatStore) Flush() error {
	return s.history.Save(s.chats)
}

// Reset clears the session and the stored history
func (s *ChatStore) Reset() error {
	if err := s.history.Reset(); err != nil {
		return err
	}
	s.chats = nil
	s.selected = ""
	return nil
}

func (s *ChatStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func hasMessage(messages []Message, id string) bool {
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

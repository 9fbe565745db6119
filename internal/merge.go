package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// MergeChats folds incoming into base by chat id. Chats only in incoming are
// appended; messages only in incoming are appended to their chat. Order of
// both chats and messages is kept. Neither input is modified.
func MergeChats(base, incoming []ChatData) []ChatData {
	out := make([]ChatData, 0, len(base)+len(incoming))
	index := make(map[string]int, len(base)+len(incoming))

	add := func(chat ChatData) {
		if i, ok := index[chat.ID]; ok {
			out[i].Messages = mergeMessages(out[i].Messages, chat.Messages)
			return
		}
		chat.Messages = mergeMessages(nil, chat.Messages)
		index[chat.ID] = len(out)
		out = append(out, chat)
	}
	for _, c := range base {
		add(c)
	}
	for _, c := range incoming {
		add(c)
	}

	for i := range out {
		out[i].Name = GetChatName(out[i].Messages)
		if len(out[i].Messages) > 0 {
			out[i].Timestamp = GetValidTimestamp(out[i].Messages[0].Timestamp)
		}
	}
	return out
}

func mergeMessages(base, incoming []Message) []Message {
	out := make([]Message, 0, len(base)+len(incoming))
	seen := make(map[string]bool, len(base)+len(incoming))
	for _, list := range [][]Message{base, incoming} {
		for _, m := range list {
			key := messageKey(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}

// messageKey identifies a message by id, or by a content hash when the id is
// missing
func messageKey(m Message) string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	h := sha256.New()
	h.Write([]byte(m.Name))
	h.Write([]byte{0})
	h.Write([]byte(m.Data.Answer))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(m.Timestamp, 10)))
	return "hash:" + hex.EncodeToString(h.Sum(nil))
}

package internal

import (
	"fmt"
	"testing"
	"time"
)

// CreateTestMessage creates a message with a fixed id and timestamp
func CreateTestMessage(id, name, answer string, ts int64) Message {
	return Message{
		ID:        id,
		Name:      name,
		Data:      Data{Answer: answer, URLSupporting: []string{}},
		Timestamp: ts,
	}
}

// CreateTestChat creates a chat holding one question and one answer from
// the CoW assistant
func CreateTestChat(id, question string, ts int64) ChatData {
	messages := []Message{
		CreateTestMessage(id+"-message-user-"+fmt.Sprint(ts), "user", question, ts),
		{
			ID:   id + "-message-CoW AI-" + fmt.Sprint(ts+1),
			Name: "CoW AI",
			Data: Data{
				Answer:        "See the **Order Book API** docs.",
				URLSupporting: []string{"https://docs.cow.fi/cow-protocol/reference/apis/orderbook"},
			},
			Timestamp: ts + 1,
		},
	}
	return ChatData{
		ID:        id,
		Name:      GetChatName(messages),
		Messages:  messages,
		Timestamp: ts,
	}
}

// CreateTestChatWithMessages creates a chat with custom messages
func CreateTestChatWithMessages(id string, messages []Message) ChatData {
	var ts int64
	if len(messages) > 0 {
		ts = messages[0].Timestamp
	}
	return ChatData{
		ID:        id,
		Name:      GetChatName(messages),
		Messages:  messages,
		Timestamp: ts,
	}
}

// FreezeTime pins the clock used for ids and timestamps until the test ends
func FreezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = prev })
}

package internal

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHistory_LoadEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value *string
	}{
		{name: "absent key", value: nil},
		{name: "empty value", value: new(string)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.value != nil {
				_ = store.SetItem(historyKey, *tt.value)
			}
			chats, err := NewHistory(store).Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if chats == nil || len(chats) != 0 {
				t.Errorf("Load() = %v, want empty list", chats)
			}
		})
	}
}

func TestHistory_SaveLoadRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	h := NewHistory(store)

	chats := []ChatData{
		CreateTestChat("chat-100", "oldest question", 100),
		{ID: "chat-empty", Name: "New Chat", Messages: []Message{}, Timestamp: 999},
		CreateTestChat("chat-300", "newest question", 300),
		CreateTestChat("chat-200", "middle question", 200),
	}
	if err := h.Save(chats); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := h.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantIDs := []string{"chat-300", "chat-200", "chat-100"}
	if len(loaded) != len(wantIDs) {
		t.Fatalf("Load() returned %d chats, want %d", len(loaded), len(wantIDs))
	}
	for i, id := range wantIDs {
		if loaded[i].ID != id {
			t.Errorf("chat %d id = %q, want %q", i, loaded[i].ID, id)
		}
		if len(loaded[i].Messages) != 2 {
			t.Errorf("chat %s has %d messages, want 2", id, len(loaded[i].Messages))
		}
	}
	if loaded[0].Name != "newest question" || loaded[0].Timestamp != 300 {
		t.Errorf("derived fields not rebuilt: %+v", loaded[0])
	}
	if loaded[2].Messages[1].Data.URLSupporting[0] != "https://docs.cow.fi/cow-protocol/reference/apis/orderbook" {
		t.Errorf("message data not preserved: %+v", loaded[2].Messages[1])
	}

	raw, _, _ := store.GetItem(historyKey)
	if strings.Contains(raw, "chat-empty") {
		t.Errorf("empty chat persisted: %s", raw)
	}
	if !strings.HasPrefix(raw, `{"chat-chat-100":[`) {
		t.Errorf("stored keys not prefixed in order: %s", raw)
	}
}

func TestHistory_SaveAllEmpty(t *testing.T) {
	store := NewMemoryStore()
	h := NewHistory(store)
	if err := h.Save([]ChatData{{ID: "a"}}); err != nil {
		t.Fatal(err)
	}
	raw, ok, _ := store.GetItem(historyKey)
	if !ok || raw != "{}" {
		t.Errorf("stored = %q, %v; want {}", raw, ok)
	}
}

func TestHistory_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{not json"},
		{name: "array", raw: `[1,2,3]`},
		{name: "null", raw: `null`},
		{name: "messages not a list", raw: `{"chat-1":{"id":"x"}}`},
		{name: "trailing garbage", raw: `{"chat-1":[]}x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			_ = store.SetItem(historyKey, tt.raw)
			_, err := NewHistory(store).Load()
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Load() error = %v, want *ParseError", err)
			}
			if pe.Source != historyKey {
				t.Errorf("ParseError.Source = %q", pe.Source)
			}
			if raw, _, _ := store.GetItem(historyKey); raw != tt.raw {
				t.Error("corrupt history was modified by Load()")
			}
		})
	}
}

func TestHistory_LoadTolerantValues(t *testing.T) {
	FreezeTime(t, time.UnixMilli(5000))

	store := NewMemoryStore()
	_ = store.SetItem(historyKey, `{
		"chat-a": [{"id":"m1","name":"user","data":{"answer":"bad ts","url_supporting":[]},"timestamp":null}],
		"chat-b": null,
		"legacy": [{"id":"m2","name":"user","data":{"answer":"no prefix"},"timestamp":4000}],
		"chat-c": [{"id":"m3","name":"user","data":{"answer":"ok"},"timestamp":"NaN"}]
	}`)

	chats, err := NewHistory(store).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chats) != 4 {
		t.Fatalf("Load() returned %d chats, want 4", len(chats))
	}

	// a, b and c all fall back to now (5000) and keep document order
	wantIDs := []string{"a", "b", "c", "legacy"}
	for i, id := range wantIDs {
		if chats[i].ID != id {
			t.Errorf("chat %d id = %q, want %q", i, chats[i].ID, id)
		}
	}
	if chats[0].Timestamp != 5000 {
		t.Errorf("invalid timestamp not replaced with now: %d", chats[0].Timestamp)
	}
	if chats[1].Messages == nil || chats[1].Name != DefaultChatName {
		t.Errorf("null messages not normalized: %+v", chats[1])
	}
}

func TestHistory_DuplicateKeysKeepFirstPosition(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetItem(historyKey, `{"chat-a":[{"id":"1","name":"user","data":{"answer":"first"},"timestamp":10}],"chat-b":[{"id":"2","name":"user","data":{"answer":"b"},"timestamp":10}],"chat-a":[{"id":"3","name":"user","data":{"answer":"second"},"timestamp":10}]}`)

	chats, err := NewHistory(store).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 || chats[0].ID != "a" || chats[0].Name != "second" {
		t.Errorf("duplicate keys not collapsed in place: %+v", chats)
	}
}

func TestHistory_Remove(t *testing.T) {
	t.Run("removes prefixed key", func(t *testing.T) {
		store := NewMemoryStore()
		h := NewHistory(store)
		_ = h.Save([]ChatData{
			CreateTestChat("chat-1", "one", 1),
			CreateTestChat("chat-2", "two", 2),
		})

		if err := h.Remove("chat-1"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		chats, _ := h.Load()
		if len(chats) != 1 || chats[0].ID != "chat-2" {
			t.Errorf("after Remove() = %+v", chats)
		}
	})

	t.Run("falls back to raw key", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.SetItem(historyKey, `{"legacy":[{"id":"m","name":"user","data":{"answer":"x"},"timestamp":1}]}`)
		h := NewHistory(store)
		if err := h.Remove("legacy"); err != nil {
			t.Fatal(err)
		}
		raw, _, _ := store.GetItem(historyKey)
		if raw != "{}" {
			t.Errorf("stored = %q, want {}", raw)
		}
	})

	t.Run("absent id leaves storage untouched", func(t *testing.T) {
		store := NewMemoryStore()
		h := NewHistory(store)
		_ = h.Save([]ChatData{CreateTestChat("chat-1", "one", 1)})
		before, _, _ := store.GetItem(historyKey)
		writes := store.Writes()

		if err := h.Remove("chat-404"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		after, _, _ := store.GetItem(historyKey)
		if after != before || store.Writes() != writes {
			t.Errorf("storage changed: writes %d -> %d", writes, store.Writes())
		}
	})

	t.Run("nothing stored", func(t *testing.T) {
		store := NewMemoryStore()
		if err := NewHistory(store).Remove("chat-1"); err != nil {
			t.Fatal(err)
		}
		if store.Writes() != 0 {
			t.Error("Remove() wrote to empty storage")
		}
	})

	t.Run("corrupt history", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.SetItem(historyKey, "{oops")
		var pe *ParseError
		if err := NewHistory(store).Remove("chat-1"); !errors.As(err, &pe) {
			t.Errorf("Remove() error = %v, want *ParseError", err)
		}
	})
}

func TestHistory_Reset(t *testing.T) {
	store := NewMemoryStore()
	h := NewHistory(store)
	_ = store.SetItem(historyKey, "{broken")

	if err := h.Reset(); err != nil {
		t.Fatal(err)
	}
	chats, err := h.Load()
	if err != nil || len(chats) != 0 {
		t.Errorf("Load() after Reset() = %v, %v", chats, err)
	}
}

func TestHistory_PreservesHTMLInAnswers(t *testing.T) {
	store := NewMemoryStore()
	h := NewHistory(store)
	chat := CreateTestChatWithMessages("chat-1", []Message{
		CreateTestMessage("m1", "user", "is <b> & <a> ok?", 7),
	})
	if err := h.Save([]ChatData{chat}); err != nil {
		t.Fatal(err)
	}
	chats, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := chats[0].Messages[0].Data.Answer; got != "is <b> & <a> ok?" {
		t.Errorf("answer = %q", got)
	}
}

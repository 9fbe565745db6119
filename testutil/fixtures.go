package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// FixtureMessage is a stored message as the client writes it. Timestamp is
// left untyped so fixtures can hold null, strings or other corrupt values.
type FixtureMessage struct {
	ID        string
	Name      string
	Answer    string
	URLs      []string
	Timestamp interface{}
}

// FixtureChat is one member of the stored history object
type FixtureChat struct {
	Key      string
	Messages []FixtureMessage
}

// HistoryJSON builds a stored chatHistory value with members in the given
// order
func HistoryJSON(t *testing.T, chats ...FixtureChat) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range chats {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(JSONMarshal(t, c.Key))
		buf.WriteByte(':')

		messages := make([]map[string]interface{}, 0, len(c.Messages))
		for _, m := range c.Messages {
			urls := m.URLs
			if urls == nil {
				urls = []string{}
			}
			messages = append(messages, map[string]interface{}{
				"id":        m.ID,
				"name":      m.Name,
				"data":      map[string]interface{}{"answer": m.Answer, "url_supporting": urls},
				"timestamp": m.Timestamp,
			})
		}
		buf.Write(JSONMarshal(t, messages))
	}
	buf.WriteByte('}')
	return buf.String()
}

// CreateSQLiteFixture creates a SQLite database file holding items in the
// kv_store table
func CreateSQLiteFixture(t *testing.T, dbPath string, items map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(kvStoreSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for k, v := range items {
		InsertItem(t, db, k, v)
	}
}

// CreateHistoryFileFixture writes a chatHistory value the way the file
// store lays it out and returns the store directory
func CreateHistoryFileFixture(t *testing.T, value string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "chatHistory.json"), []byte(value), 0644); err != nil {
		t.Fatalf("Failed to write history fixture: %v", err)
	}
	return dir
}

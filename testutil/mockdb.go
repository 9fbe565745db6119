package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const kvStoreSQL = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`

// CreateInMemoryDB creates an in-memory SQLite database with the kv_store
// table. The pool is pinned to one connection because every new connection
// to :memory: opens a separate, empty database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(kvStoreSQL); err != nil {
		t.Fatalf("Failed to create kv_store table: %v", err)
	}
	return db
}

// CreateTestDB creates an in-memory database holding a two-chat history
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	InsertItem(t, db, "chatHistory", HistoryJSON(t,
		FixtureChat{Key: "chat-chat-1000", Messages: []FixtureMessage{
			{ID: "chat-1000-message-user-1000", Name: "user", Answer: "How do I place a limit order?", Timestamp: 1000},
			{ID: "chat-1000-message-CoW AI-1001", Name: "CoW AI", Answer: "Use the **Order Book API**.", URLs: []string{"/cow-protocol/reference/apis/orderbook"}, Timestamp: 1001},
		}},
		FixtureChat{Key: "chat-chat-2000", Messages: []FixtureMessage{
			{ID: "chat-2000-message-user-2000", Name: "user", Answer: "What is a CoW?", Timestamp: 2000},
		}},
	))
	return db
}

// InsertItem upserts a key/value pair into kv_store
func InsertItem(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO kv_store (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}

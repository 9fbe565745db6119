package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/govchat/internal"
)

// History store kinds
const (
	storeFile   = "file"
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

const defaultHistoryDir = ".govchat"

// historyLocation returns the configured history location or the default
// under the user's home directory
func historyLocation(kind string) (string, error) {
	if loc := cfg.GetString(keyHistory); loc != "" {
		return loc, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, defaultHistoryDir)
	if kind == storeSQLite {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &internal.StorageError{Path: dir, Op: "open", Err: err}
		}
		return filepath.Join(dir, "history.db"), nil
	}
	return dir, nil
}

// openStore creates the configured key/value store. The returned close
// function is never nil.
func openStore() (internal.KeyValueStore, func() error, error) {
	noop := func() error { return nil }
	kind := cfg.GetString(keyStore)

	switch kind {
	case storeMemory:
		return internal.NewMemoryStore(), noop, nil
	case storeFile, "":
		dir, err := historyLocation(storeFile)
		if err != nil {
			return nil, noop, err
		}
		store, err := internal.NewFileStore(dir)
		if err != nil {
			return nil, noop, err
		}
		internal.LogDebug("Using file history in %s", store.Dir())
		return store, noop, nil
	case storeSQLite:
		path, err := historyLocation(storeSQLite)
		if err != nil {
			return nil, noop, err
		}
		store, err := internal.NewSQLiteStore(path)
		if err != nil {
			return nil, noop, err
		}
		internal.LogDebug("Using SQLite history at %s", path)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store: %s (supported: %s, %s, %s)", kind, storeFile, storeSQLite, storeMemory)
	}
}

// openChatStore opens the history and loads it into a ChatStore. Corrupt
// history is discarded only when --reset-history is set.
func openChatStore() (*internal.ChatStore, func(), error) {
	kv, closeStore, err := openStore()
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if err := closeStore(); err != nil {
			internal.LogWarn("Failed to close history store: %v", err)
		}
	}

	chats := internal.NewChatStore(internal.NewHistory(kv))
	err = chats.Load()
	if err == nil {
		return chats, cleanup, nil
	}

	var parseErr *internal.ParseError
	if !errors.As(err, &parseErr) || !cfg.GetBool(keyResetHistory) {
		cleanup()
		return nil, func() {}, err
	}

	internal.LogWarn("Discarding unreadable history: %v", err)
	if err := chats.Reset(); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return chats, cleanup, nil
}

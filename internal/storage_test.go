package internal

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// storeFactories builds every KeyValueStore implementation for shared tests
func storeFactories(t *testing.T) map[string]func() KeyValueStore {
	t.Helper()
	return map[string]func() KeyValueStore{
		"memory": func() KeyValueStore { return NewMemoryStore() },
		"file": func() KeyValueStore {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "store"))
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}
			return s
		},
		"sqlite": func() KeyValueStore {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestKeyValueStore_Contract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			if _, ok, err := s.GetItem("chatHistory"); err != nil || ok {
				t.Fatalf("GetItem(absent) = ok %v, err %v", ok, err)
			}

			if err := s.SetItem("chatHistory", `{"a":1}`); err != nil {
				t.Fatalf("SetItem() error = %v", err)
			}
			if err := s.SetItem("chatHistory", `{"b":2}`); err != nil {
				t.Fatalf("SetItem(overwrite) error = %v", err)
			}
			v, ok, err := s.GetItem("chatHistory")
			if err != nil || !ok || v != `{"b":2}` {
				t.Fatalf("GetItem() = %q, %v, %v", v, ok, err)
			}

			if err := s.SetItem("empty", ""); err != nil {
				t.Fatalf("SetItem(empty) error = %v", err)
			}
			if v, ok, _ := s.GetItem("empty"); !ok || v != "" {
				t.Errorf("GetItem(empty) = %q, %v; want present empty value", v, ok)
			}

			if err := s.RemoveItem("chatHistory"); err != nil {
				t.Fatalf("RemoveItem() error = %v", err)
			}
			if _, ok, _ := s.GetItem("chatHistory"); ok {
				t.Error("GetItem() after RemoveItem() still present")
			}
			if err := s.RemoveItem("chatHistory"); err != nil {
				t.Errorf("RemoveItem(absent) error = %v", err)
			}
		})
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SetItem("k", "v")
			_, _, _ = s.GetItem("k")
		}()
	}
	wg.Wait()
	if s.Writes() != 20 {
		t.Errorf("Writes() = %d, want 20", s.Writes())
	}
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir() != dir {
		t.Errorf("Dir() = %q", s.Dir())
	}
	if err := s.SetItem("chatHistory", "{}"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "chatHistory.json"))
	if err != nil || string(data) != "{}" {
		t.Errorf("stored file = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := s.SetItem(key, "x"); err == nil {
			t.Errorf("SetItem(%q) should be rejected", key)
		}
	}
}

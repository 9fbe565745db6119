package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/govchat/internal"
)

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	seedChats(t, dir,
		internal.CreateTestChat("chat-1", "older question", 1600000000000),
		internal.CreateTestChat("chat-2", "newer question", 1700000000000),
	)

	tests := []struct {
		name      string
		args      []string
		wantFiles []string
		wantErr   bool
	}{
		{
			name:      "all chats as jsonl",
			args:      []string{"export"},
			wantFiles: []string{"chat_chat-1.jsonl", "chat_chat-2.jsonl"},
		},
		{
			name:      "single chat as markdown",
			args:      []string{"export", "--format", "md", "--chat", "chat-2"},
			wantFiles: []string{"chat_chat-2.md"},
		},
		{
			name:      "html",
			args:      []string{"export", "-f", "html"},
			wantFiles: []string{"chat_chat-1.html", "chat_chat-2.html"},
		},
		{
			name:    "invalid format",
			args:    []string{"export", "--format", "invalid"},
			wantErr: true,
		},
		{
			name:    "unknown chat",
			args:    []string{"export", "--chat", "missing"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "exports")
			_, err := runCLI(t, dir, append(tt.args, "--out", outDir)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("export error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			entries, err := os.ReadDir(outDir)
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			if len(entries) != len(tt.wantFiles) {
				t.Errorf("exported %d file(s), want %d", len(entries), len(tt.wantFiles))
			}
			for _, name := range tt.wantFiles {
				if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
					t.Errorf("missing export %s: %v", name, err)
				}
			}
		})
	}
}

func TestExportCommand_MarkdownContent(t *testing.T) {
	dir := t.TempDir()
	seedChats(t, dir, internal.CreateTestChat("chat-1", "How do I quote?", 1700000000000))
	outDir := t.TempDir()

	if _, err := runCLI(t, dir, "export", "-f", "md", "-o", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "chat_chat-1.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"# How do I quote?", "**Assistant:** CoW AI", "[[1]](https://docs.cow.fi/"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("markdown export missing %q\nGot: %s", want, data)
		}
	}
}

func TestExportCommand_NoChats(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "exports")
	if _, err := runCLI(t, t.TempDir(), "export", "-o", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("no output directory expected without chats, stat err = %v", err)
	}
}

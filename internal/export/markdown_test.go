package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		chat    internal.ChatData
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name: "basic chat",
			chat: internal.CreateTestChat("chat-1", "How do I quote?", 1700000000000),
			want: []string{
				"# How do I quote?",
				"**Chat:** chat-1",
				"**Messages:** 2",
				"**You:** (",
				"**CoW AI:** (",
				"**Order Book API**",
				"References: [[1]](https://docs.cow.fi/cow-protocol/reference/apis/orderbook)",
			},
			notWant: []string{"<a href"},
			wantErr: false,
		},
		{
			name: "empty chat uses default name",
			chat: internal.CreateTestChatWithMessages("chat-2", []internal.Message{}),
			want: []string{
				"# New Chat",
				"**Messages:** 0",
			},
			wantErr: false,
		},
		{
			name: "code block preserved",
			chat: internal.CreateTestChatWithMessages("chat-3", []internal.Message{
				internal.CreateTestMessage("m1", "CoW AI", "Try this:\n```go\nx := 1\n```", 1700000000000),
			}),
			want: []string{
				"Try this:",
				"```go\nx := 1\n```",
			},
			wantErr: false,
		},
		{
			name: "invalid timestamp",
			chat: internal.CreateTestChatWithMessages("chat-4", []internal.Message{
				internal.CreateTestMessage("m1", "user", "hi", 9e15),
			}),
			want:    []string{"(Invalid date)"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &MarkdownExporter{opts: options{resolver: content.DefaultResolver()}}

			err := exporter.Export(&tt.chat, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("MarkdownExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("MarkdownExporter.Export() output missing %q\nGot: %s", want, output)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(output, notWant) {
					t.Errorf("MarkdownExporter.Export() output should not contain %q\nGot: %s", notWant, output)
				}
			}
		})
	}
}

func TestMarkdownExporter_Separators(t *testing.T) {
	chat := internal.CreateTestChat("chat-1", "q", 1700000000000)

	var buf bytes.Buffer
	exporter := &MarkdownExporter{opts: options{resolver: content.DefaultResolver()}}
	if err := exporter.Export(&chat, &buf); err != nil {
		t.Fatalf("MarkdownExporter.Export() error = %v", err)
	}

	// one rule below the header, one between the two messages
	if got := strings.Count(buf.String(), "---\n\n"); got != 2 {
		t.Errorf("separator count = %d, want 2\nGot: %s", got, buf.String())
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "bold markers", in: "a ** b", want: "a \\*\\* b"},
		{name: "underscores", in: "__init__", want: "\\_\\_init\\_\\_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.in); got != tt.want {
				t.Errorf("escapeMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	exporter := &MarkdownExporter{}
	if got := exporter.Extension(); got != "md" {
		t.Errorf("MarkdownExporter.Extension() = %v, want md", got)
	}
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
)

var (
	limit int
	raw   bool
)

var (
	// Styles for show command
	chatHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	chatMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Show the messages of a chat",
	Long: `Display the messages of a chat with rendered answers and references.
Without a chat id the selected (most recent) chat is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chats, cleanup, err := openChatStore()
		if err != nil {
			return err
		}
		defer cleanup()

		var chat internal.ChatData
		if len(args) == 1 {
			chat, err = chats.Chat(args[0])
			if err != nil {
				return fmt.Errorf("%w (use 'govchat list' to see available chats)", err)
			}
		} else {
			var ok bool
			if chat, ok = chats.Selected(); !ok {
				return fmt.Errorf("no chats yet (start one with 'govchat ask <question>')")
			}
		}

		out := cmd.OutOrStdout()
		color := internal.IsTerminal()
		displayChatHeader(out, chat)

		messagesToShow := chat.Messages
		total := len(messagesToShow)
		if limit > 0 && limit < total {
			messagesToShow = messagesToShow[total-limit:]
		}

		offset := total - len(messagesToShow)
		for i, msg := range messagesToShow {
			displayMessage(out, offset+i+1, msg, total, color)
		}

		if offset > 0 {
			_, _ = fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("... (%d earlier message(s) hidden)", offset)))
		}
		return nil
	},
}

func displayChatHeader(out io.Writer, chat internal.ChatData) {
	name := chat.Name
	if name == "" {
		name = internal.DefaultChatName
	}
	_, _ = fmt.Fprintln(out, chatHeaderStyle.Render(fmt.Sprintf("💬 %s", name)))

	metaParts := []string{
		fmt.Sprintf("ID: %s", chat.ID),
		fmt.Sprintf("Started: %s", internal.FormatDate(chat.Timestamp)),
		fmt.Sprintf("Messages: %d", len(chat.Messages)),
	}
	_, _ = fmt.Fprintln(out, chatMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(out)
}

func displayMessage(out io.Writer, index int, msg internal.Message, total int, color bool) {
	actorStyle, actorLabel := assistantMessageStyle, "🤖 "+msg.Name
	if internal.IsUserMessage(msg) {
		actorStyle, actorLabel = userMessageStyle, "👤 You"
	}

	header := actorStyle.Render(actorLabel) + " " +
		timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total)) + " " +
		timestampStyle.Render(internal.FormatDate(msg.Timestamp))
	_, _ = fmt.Fprintln(out, header)

	if strings.TrimSpace(msg.Data.Answer) == "" && internal.IsUserMessage(msg) {
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
		return
	}

	text := internal.MessageContent(msg.Data, activeResolver)
	if raw {
		_, _ = fmt.Fprintln(out, text)
	} else {
		_, _ = fmt.Fprintln(out, messageContentStyle.Render(renderTerminal(text, color)))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last n messages")
	showCmd.Flags().BoolVar(&raw, "raw", false, "Print message text without rendering")
}

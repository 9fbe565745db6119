package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/predict"
)

var (
	askChatID      string
	askNewChat     bool
	askNoStream    bool
	askShouldError bool
	askEdit        string
)

var (
	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a question",
	Long: `Send a question to the prediction API and print the answer.

The question is added to the selected chat (the most recent one) unless
--chat or --new is given. Earlier messages of the chat are sent along as
conversation memory. Answers are streamed by default.

Use --edit <message-id> to rewrite an earlier question: everything after it
is dropped and the conversation continues from the edited question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is required")
		}

		chats, cleanup, err := openChatStore()
		if err != nil {
			return err
		}
		defer cleanup()

		chat, err := selectAskChat(chats)
		if err != nil {
			return err
		}

		// Record the question and collect the memory sent with it
		var prior []internal.Message
		if askEdit != "" {
			// an edit keeps the message's id, speaker and timestamp
			edited, err := chats.Message(chat.ID, askEdit)
			if err != nil {
				return err
			}
			edited.Data.Answer = question
			if err := chats.ReplaceMessage(chat.ID, edited); err != nil {
				return err
			}
			updated, _ := chats.Chat(chat.ID)
			prior = updated.Messages[:len(updated.Messages)-1]
		} else {
			userMsg, err := chats.NewMessage(chat.ID, internal.Data{Answer: question, URLSupporting: []string{}}, "")
			if err != nil {
				return err
			}
			prior = chat.Messages
			if err := chats.AppendMessage(chat.ID, userMsg); err != nil {
				return err
			}
		}

		req := predict.NewRequest(question, prior)
		req.ShouldError = askShouldError

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		data, askErr := askQuestion(ctx, predict.NewClient(cfg.GetString(keyAPIURL)), req, out)

		var recordErr error
		if data.Answer != "" {
			reply, err := chats.NewMessage(chat.ID, data, activeBrand.AssistantName)
			if err == nil {
				err = chats.AppendMessage(chat.ID, reply)
			}
			if err != nil {
				recordErr = fmt.Errorf("failed to record answer: %w", err)
			}
		}
		if err := chats.Flush(); err != nil {
			return err
		}
		internal.LogDebug("Chat %s saved", chat.ID)
		return errors.Join(askErr, recordErr)
	},
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// selectAskChat returns the chat a new question goes to
func selectAskChat(chats *internal.ChatStore) (internal.ChatData, error) {
	switch {
	case askChatID != "":
		if err := chats.SelectChat(askChatID); err != nil {
			return internal.ChatData{}, err
		}
		return chats.Chat(askChatID)
	case askNewChat:
		return chats.AddChat(), nil
	}
	if askEdit != "" {
		return internal.ChatData{}, fmt.Errorf("--edit needs --chat")
	}
	if chat, ok := chats.Selected(); ok {
		return chat, nil
	}
	return chats.AddChat(), nil
}

// askQuestion gets the answer for req and prints it to out. A partial
// answer is returned alongside the error when a stream breaks or is
// interrupted.
func askQuestion(ctx context.Context, client *predict.Client, req predict.Request, out io.Writer) (internal.Data, error) {
	color := internal.IsTerminal()

	if askNoStream {
		var resp *predict.Response
		err := internal.ShowProgress(ctx, "Waiting for "+activeBrand.AssistantName, func() error {
			var err error
			resp, err = client.Predict(ctx, req)
			return err
		})
		if err != nil {
			return internal.Data{}, err
		}
		printAnswer(out, resp.Data, color)
		return resp.Data, nil
	}

	// On a terminal the raw chunks are shown while they arrive and replaced by
	// the rendered answer at the end. Elsewhere only the rendered answer is
	// written.
	_, _ = fmt.Fprintln(out, assistantMessageStyle.Render(activeBrand.AssistantName))
	answer, err := client.PredictStream(ctx, req, func(chunk string) {
		if color {
			_, _ = io.WriteString(out, chunk)
		}
	})
	if color {
		clearPrinted(out, answer, terminalWidth())
	}

	data := internal.Data{Answer: answer, URLSupporting: []string{}}
	if answer != "" {
		_, _ = fmt.Fprintln(out, renderTerminal(internal.MessageContent(data, activeResolver), color))
	}
	var streamErr *predict.StreamError
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		internal.PrintWarning("Interrupted, keeping the partial answer")
	case errors.As(err, &streamErr):
		internal.LogDebug("Stream broke after %d bytes", len(streamErr.Partial))
	}
	return data, err
}

// printAnswer renders a complete answer with its references
func printAnswer(out io.Writer, data internal.Data, color bool) {
	_, _ = fmt.Fprintln(out, assistantMessageStyle.Render(activeBrand.AssistantName))
	text := internal.MessageContent(data, activeResolver)
	_, _ = fmt.Fprintln(out, renderTerminal(text, color))
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askChatID, "chat", "", "Chat to continue (default: most recent)")
	askCmd.Flags().BoolVar(&askNewChat, "new", false, "Start a new chat")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "Wait for the whole answer instead of streaming")
	askCmd.Flags().BoolVar(&askShouldError, "should-error", false, "Ask the server to simulate a failure")
	askCmd.Flags().StringVar(&askEdit, "edit", "", "Rewrite the question with this message id and resend")
}

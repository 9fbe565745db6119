package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove <chat-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a chat",
	Long:    `Delete a chat from the history. The most recent remaining chat becomes the selected one.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chats, cleanup, err := openChatStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := chats.RemoveChat(args[0]); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Removed chat "+args[0]))
		if next, ok := chats.Selected(); ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Selected chat: "+next.ID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

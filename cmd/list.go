package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
)

const listNameWidth = 40

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats",
	Long:  `List all stored chats, most recent first. The selected chat is marked with *.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chats, cleanup, err := openChatStore()
		if err != nil {
			return err
		}
		defer cleanup()

		selected, _ := chats.Selected()
		displayChats(cmd, chats.Chats(), selected.ID)
		return nil
	},
}

func displayChats(cmd *cobra.Command, chats []internal.ChatData, selectedID string) {
	out := cmd.OutOrStdout()
	if len(chats) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No chats yet"))
		_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: start one with `govchat ask <question>`"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d chat(s)", len(chats))))
	_, _ = fmt.Fprintln(out)

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Started")+"\t")

	for _, chat := range chats {
		marker := " "
		if chat.ID == selectedID {
			marker = selectedStyle.Render("*")
		}

		name := chat.Name
		if name == "" {
			name = internal.DefaultChatName
		}
		name = truncate(name, listNameWidth)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(chat.ID),
			name,
			countStyle.Render(strconv.Itoa(len(chat.Messages))),
			dateStyle.Render(internal.FormatDate(chat.Timestamp)),
		)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(chats[0].ID)+
		idStyle.Render(") with `govchat show <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
}

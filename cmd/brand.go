package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
)

// brandCmd groups the brand subcommands
var brandCmd = &cobra.Command{
	Use:   "brand",
	Short: "Inspect assistant brands",
}

var brandListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known brands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Assistant")+"\t"+titleStyle.Render("Docs")+"\t")
		for _, b := range internal.Brands() {
			marker := " "
			if b.ID == activeBrand.ID {
				marker = selectedStyle.Render("*")
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", marker, b.ID, b.AssistantName, b.DocsURL)
		}
		return w.Flush()
	},
}

var brandShowCmd = &cobra.Command{
	Use:   "show [brand]",
	Short: "Show a brand and its suggested questions",
	Long: `Show a brand's details and the suggested questions offered on a new chat.
Without an argument the active brand (--brand) is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := activeBrand
		if len(args) == 1 {
			var err error
			if b, err = internal.ResolveBrand(args[0]); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		nameStyle := lipgloss.NewStyle().Bold(true)
		if b.Color != "" {
			nameStyle = nameStyle.Foreground(lipgloss.Color(b.Color))
		}

		_, _ = fmt.Fprintln(out, nameStyle.Render(b.Name))
		if b.Tagline != "" {
			_, _ = fmt.Fprintln(out, chatMetaStyle.Render(b.Tagline))
		}
		_, _ = fmt.Fprintf(out, "Assistant: %s\n", b.AssistantName)
		if b.DocsURL != "" {
			_, _ = fmt.Fprintf(out, "%s: %s\n", docsLabel(b), b.DocsURL)
		}
		if len(b.Suggestions) > 0 {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, sectionStyle.Render("Suggestions"))
			for _, s := range b.Suggestions {
				_, _ = fmt.Fprintf(out, "  • %s: %s\n", s.Label, s.Value)
			}
		}
		return nil
	},
}

func docsLabel(b internal.Brand) string {
	if b.DocsLabel != "" {
		return b.DocsLabel
	}
	return "Docs"
}

func init() {
	rootCmd.AddCommand(brandCmd)
	brandCmd.AddCommand(brandListCmd)
	brandCmd.AddCommand(brandShowCmd)
}

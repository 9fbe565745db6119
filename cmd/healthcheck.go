package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal/predict"
)

var (
	healthcheckDetails bool
	healthcheckTimeout time.Duration
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the history store and prediction API are usable",
	Long: `Check the health of govchat by verifying:
  • Brand configuration
  • History store access
  • Stored chat history can be read
  • Prediction API availability

This command is useful for debugging configuration issues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 govchat Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Brand
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving brand..."))
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Brand %s (%s)", activeBrand.ID, activeBrand.AssistantName)))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   References: %s\n", activeResolver.Origin())
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: History
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Loading chat history..."))
		historyOK := checkHistory(out)
		_, _ = fmt.Fprintln(out)

		// Step 3: Prediction API
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting prediction API..."))
		apiURL := cfg.GetString(keyAPIURL)
		ctx, cancel := context.WithTimeout(cmdContext(cmd), healthcheckTimeout)
		defer cancel()
		apiErr := predict.NewClient(apiURL).Health(ctx)
		if apiErr != nil {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Prediction API not reachable:"), apiErr)
			_, _ = fmt.Fprintln(out, "   Start one locally with `govchat mock-server`")
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Prediction API is up"))
		}
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   URL: %s\n", apiURL)
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		switch {
		case historyOK && apiErr == nil:
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		case historyOK:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  History available but the prediction API is down"))
			return nil
		default:
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: history store not usable")
		}
	},
}

func checkHistory(out io.Writer) bool {
	chats, cleanup, err := openChatStore()
	if err != nil {
		_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to load history:"), err)
		return false
	}
	defer cleanup()

	all := chats.Chats()
	if len(all) == 0 {
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  No chats stored yet"))
		return true
	}

	_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d chat(s)", len(all))))
	if healthcheckDetails {
		for i, chat := range all {
			if i == 5 {
				_, _ = fmt.Fprintf(out, "   ... and %d more\n", len(all)-5)
				break
			}
			_, _ = fmt.Fprintf(out, "   [%d] %s (ID: %s)\n", i+1, truncate(chat.Name, listNameWidth), chat.ID)
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckDetails, "details", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 5*time.Second, "Timeout for the API check")
}

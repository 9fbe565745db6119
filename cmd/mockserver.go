package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/predict"
)

var (
	mockAddr         string
	mockDelay        time.Duration
	mockMinWordDelay time.Duration
	mockMaxWordDelay time.Duration
)

// mockServerCmd represents the mock-server command
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a simulated prediction API",
	Long: `Serve canned answers for the active brand on /predict and /predict_stream,
with a health check on /up. Answers are streamed word by word with random
delays. Requests with "shouldError": true fail the way the real service does.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := predict.DefaultMockOptions()
		opts.Brand = activeBrand.ID
		opts.ResponseDelay = mockDelay
		opts.MinWordDelay = mockMinWordDelay
		opts.MaxWordDelay = mockMaxWordDelay

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		internal.PrintInfo(fmt.Sprintf("Mock %s API listening on %s", activeBrand.AssistantName, mockAddr))
		if err := predict.RunMockServer(ctx, mockAddr, opts); err != nil {
			return fmt.Errorf("mock server failed: %w", err)
		}
		internal.PrintSuccess("Mock server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mockServerCmd)
	defaults := predict.DefaultMockOptions()
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":8000", "Address to listen on")
	mockServerCmd.Flags().DurationVar(&mockDelay, "delay", defaults.ResponseDelay, "Delay before each reply")
	mockServerCmd.Flags().DurationVar(&mockMinWordDelay, "min-word-delay", defaults.MinWordDelay, "Minimum delay between streamed words")
	mockServerCmd.Flags().DurationVar(&mockMaxWordDelay, "max-word-delay", defaults.MaxWordDelay, "Maximum delay between streamed words")
}

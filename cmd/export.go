package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/export"
)

var (
	format     string
	outputDir  string
	exportChat string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export chats to files",
	Long: `Export chats to various formats (jsonl, json, yaml, md, html).

Each chat is written to chat_<id>.<ext> in the output directory. You can
export all chats or a single chat by ID. Use 'govchat list' to see
available chat IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chats, cleanup, err := openChatStore()
		if err != nil {
			return err
		}
		defer cleanup()

		toExport := chats.Chats()
		if exportChat != "" {
			chat, err := chats.Chat(exportChat)
			if err != nil {
				return fmt.Errorf("%w (use 'govchat list' to see available chats)", err)
			}
			toExport = []internal.ChatData{chat}
		}
		if len(toExport) == 0 {
			internal.PrintInfo("No chats to export")
			return nil
		}

		// Create exporter
		exporter, err := export.NewExporter(format, export.WithResolver(activeResolver), export.WithBrand(activeBrand))
		if err != nil {
			return err
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: outputDir, Err: err}
		}

		var failed []error
		ctx := context.Background()
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d chat(s) to %s", len(toExport), outputDir), func() error {
			for i := range toExport {
				if err := exportChatFile(exporter, &toExport[i]); err != nil {
					internal.LogError("%v", err)
					failed = append(failed, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		exported := len(toExport) - len(failed)
		if len(failed) > 0 {
			return fmt.Errorf("exported %d of %d chat(s): %w", exported, len(toExport), failed[0])
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Export complete: %d chat(s) exported to %s", exported, outputDir)))
		return nil
	},
}

func exportChatFile(exporter export.Exporter, chat *internal.ChatData) error {
	filename := fmt.Sprintf("chat_%s.%s", chat.ID, exporter.Extension())
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	if err := exporter.Export(chat, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	internal.LogDebug("Wrote %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, json, yaml, md, html)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportChat, "chat", "", "Export a single chat by ID")
}

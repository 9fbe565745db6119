package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
)

var (
	renderFormat string
	renderURLs   []string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render answer text",
	Long: `Run answer text through the rendering pipeline: line breaks are normalized,
code fences are split out, bold, inline code and links are formatted, and
supporting URLs become a numbered references line.

The text is read from the file argument or from stdin.

Formats:
  text  terminal output (default)
  html  an HTML fragment
  json  the rendered blocks as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}

		b, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		text := internal.MessageContent(internal.Data{Answer: string(b), URLSupporting: renderURLs}, activeResolver)
		out := cmd.OutOrStdout()

		switch renderFormat {
		case "text", "":
			_, _ = fmt.Fprintln(out, renderTerminal(text, internal.IsTerminal()))
		case "html":
			_, _ = io.WriteString(out, content.RenderHTML(content.Render(text)))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(content.Render(text))
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, html, json)", renderFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "text", "Output format (text, html, json)")
	renderCmd.Flags().StringSliceVar(&renderURLs, "url", nil, "Supporting URL to cite (repeatable)")
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
	"github.com/iksnae/govchat/internal/predict"
)

// Configuration keys. Each is also read from GOVCHAT_<KEY> with dashes
// turned into underscores.
const (
	keyVerbose      = "verbose"
	keyLogLevel     = "log-level"
	keyBrand        = "brand"
	keyAPIURL       = "api-url"
	keyStore        = "store"
	keyHistory      = "history"
	keyResetHistory = "reset-history"
	keyEnvFile      = "env-file"
)

var (
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

var (
	// cfg holds flag and environment configuration
	cfg = newConfig()

	// activeBrand and activeResolver are resolved once per invocation
	activeBrand    internal.Brand
	activeResolver *content.Resolver
)

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOVCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "govchat",
	Short: "Chat with a documentation assistant from the terminal",
	Long: `A command line client for retrieval-augmented documentation assistants.

Questions are sent to a prediction API, answers are streamed back and
rendered with their cited references, and every conversation is kept in a
local history store.

Features:
  • Streamed answers with reference links resolved against the docs site
  • Local chat history (JSON files, SQLite or in-memory)
  • Export chats as JSONL, JSON, YAML, Markdown or HTML
  • Built-in CoW and Optimism brands, plus custom YAML/TOML brands
  • A mock prediction server for offline use

Quick Start:
  govchat mock-server &                  # Start the mock API
  govchat ask "How do I set buyAmount?"  # Ask a question
  govchat list                           # List your chats
  govchat show <chat-id>                 # Read a chat

Every flag can also be set through the environment, e.g. GOVCHAT_API_URL.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(cfg.GetString(keyEnvFile)); err != nil {
			return err
		}

		internal.SetVerbose(cfg.GetBool(keyVerbose))
		if level := cfg.GetString(keyLogLevel); level != "" && !cfg.GetBool(keyVerbose) {
			parsed, err := internal.ParseLogLevel(level)
			if err != nil {
				return err
			}
			internal.SetLogLevel(parsed)
		}

		brand, err := internal.ResolveBrand(cfg.GetString(keyBrand))
		if err != nil {
			return err
		}
		resolver, err := brand.Resolver()
		if err != nil {
			return err
		}
		activeBrand = brand
		activeResolver = resolver
		internal.LogDebug("Using brand %s (%s)", brand.ID, brand.AssistantName)
		return nil
	},
}

// loadEnvFile loads KEY=value pairs from path into the process
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	internal.LogDebug("Loaded environment from %s", path)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(err.Error())
		var parseErr *internal.ParseError
		if errors.As(err, &parseErr) && parseErr.Source != "brand" {
			internal.PrintInfo("Run again with --reset-history to discard the stored chats")
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP(keyVerbose, "v", false, "Enable verbose logging")
	flags.String(keyLogLevel, "", "Log level (error, warn, info, debug)")
	flags.String(keyBrand, internal.BrandCow, "Brand id (cow, optimism) or path to a YAML/TOML brand file")
	flags.String(keyAPIURL, predict.DefaultBaseURL, "Base URL of the prediction API")
	flags.String(keyStore, storeFile, "History store (file, sqlite, memory)")
	flags.String(keyHistory, "", "History location (directory for file, database path for sqlite)")
	flags.Bool(keyResetHistory, false, "Discard stored chats that cannot be read")
	flags.String(keyEnvFile, ".env", "Environment file to load")

	for _, key := range []string{keyVerbose, keyLogLevel, keyBrand, keyAPIURL, keyStore, keyHistory, keyResetHistory, keyEnvFile} {
		_ = cfg.BindPFlag(key, flags.Lookup(key))
	}

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/predict"
)

// resetFlags puts every flag of c and its subcommands back to its default,
// since cobra keeps flag values between Execute calls
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command with a file history in dir. The
// history, store and env-file flags are only defaulted when args lack them.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runCLIIn(t, dir, &bytes.Buffer{}, args...)
}

func runCLIIn(t *testing.T, dir string, in io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	// defaults go first so flags cobra only registers at execute time
	// (--help, --version) stay the last arguments
	var defaults []string
	for _, d := range [][2]string{{"--history", dir}, {"--store", "file"}, {"--env-file", ""}} {
		if !hasArg(args, d[0]) {
			defaults = append(defaults, d[0]+"="+d[1])
		}
	}
	args = append(defaults, args...)
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(in)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func hasArg(args []string, name string) bool {
	for _, a := range args {
		if a == name || strings.HasPrefix(a, name+"=") {
			return true
		}
	}
	return false
}

// startMockAPI serves the mock prediction API without delays
func startMockAPI(t *testing.T, brand string) string {
	t.Helper()
	srv := httptest.NewServer(predict.NewMockServer(predict.MockOptions{Brand: brand}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// loadChats reads the history written to dir
func loadChats(t *testing.T, dir string) []internal.ChatData {
	t.Helper()
	store, err := internal.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	chats, err := internal.NewHistory(store).Load()
	if err != nil {
		t.Fatalf("History.Load() error = %v", err)
	}
	return chats
}

// seedChats writes chats to the history in dir
func seedChats(t *testing.T, dir string, chats ...internal.ChatData) {
	t.Helper()
	store, err := internal.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := internal.NewHistory(store).Save(chats); err != nil {
		t.Fatalf("History.Save() error = %v", err)
	}
}

func decodeJSON(t *testing.T, r *http.Request, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("failed to decode request: %v", err)
	}
}

// runCLIWithInput is runCLI with input on stdin
func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	return runCLIIn(t, t.TempDir(), strings.NewReader(input), args...)
}

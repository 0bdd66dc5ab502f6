// Compa
//
// A small HTTP relay that answers college questions and autocompletes
// half-typed ones using a hosted Gemma model on OpenRouter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "compa",
	Short: "Compa - college senior bot relay",
	Long: `Compa relays chat and autocomplete prompts to a hosted language model.

  compa config set OPENROUTER_API_KEY sk-or-...   Store the provider key
  compa serve                                      Start the server
  compa chat "which dorm is best?"                 Ask a question
  compa complete "how do I"                        Autocomplete a question`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("COMPA_SERVER", "http://localhost:5000"), "Compa server URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

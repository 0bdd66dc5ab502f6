package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// configKey describes a single configuration value.
type configKey struct {
	Key      string
	Desc     string
	Required bool
	Secret   bool
}

// allConfigKeys lists every configurable value in display order.
var allConfigKeys = []configKey{
	{"OPENROUTER_API_KEY", "OpenRouter API key", true, true},
	{"COMPA_ADDR", "HTTP listen address (default :5000)", false, false},
	{"COMPA_MODEL", "Provider model id (default google/gemma-2-9b-it:free)", false, false},
	{"COMPA_PROVIDER_URL", "Provider base URL (default https://openrouter.ai/api/v1)", false, false},
	{"COMPA_PROVIDER_TIMEOUT", "Outbound call timeout, e.g. 30s (default none)", false, false},
	{"TELEGRAM_BOT_TOKEN", "Telegram bot token (from @BotFather)", false, true},
	{"SLACK_BOT_TOKEN", "Slack Bot User OAuth Token (xoxb-...)", false, true},
	{"SLACK_APP_TOKEN", "Slack App-Level Token (xapp-...)", false, true},
}

// ---------------------------------------------------------------------------
// Cobra commands
// ---------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Compa configuration",
	Long: `Manage Compa configuration (API keys, listen address, etc.).

Configuration is stored in a dotenv file (COMPA_ENV_FILE, default ./.env)
and can be overridden by environment variables.

  compa config set KEY VALUE      Set a single config value
  compa config show               Show current configuration
  compa config path               Print config file path`,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value. Example:
  compa config set OPENROUTER_API_KEY sk-or-xxxxxxxxxxxx`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all configured values. Secrets are masked.",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// ---------------------------------------------------------------------------
// Config file helpers
// ---------------------------------------------------------------------------

func configFilePath() string {
	return envOr("COMPA_ENV_FILE", ".env")
}

// loadConfigFile reads the dotenv file. A missing file yields an empty map.
func loadConfigFile() (map[string]string, error) {
	values, err := godotenv.Read(configFilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

func saveConfigFile(values map[string]string) error {
	path := configFilePath()
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// The file holds secrets.
	return os.Chmod(path, 0o600)
}

// effectiveValue returns the env var if set, otherwise the file value.
func effectiveValue(key string, fileValues map[string]string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValues[key]
}

func maskSecret(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func findKey(name string) (configKey, bool) {
	for _, ck := range allConfigKeys {
		if ck.Key == name {
			return ck, true
		}
	}
	return configKey{}, false
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := strings.ToUpper(args[0]), args[1]
	ck, ok := findKey(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (see 'compa config show')", key)
	}

	fileValues, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	fileValues[key] = value
	if err := saveConfigFile(fileValues); err != nil {
		return err
	}

	display := value
	if ck.Secret {
		display = maskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, display, configFilePath())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fileValues, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	printConfig(cmd.OutOrStdout(), fileValues)
	return nil
}

func printConfig(w io.Writer, fileValues map[string]string) {
	fmt.Fprintf(w, "Config file: %s\n\n", configFilePath())

	for _, ck := range allConfigKeys {
		value := effectiveValue(ck.Key, fileValues)
		source := ""
		if os.Getenv(ck.Key) != "" {
			source = " (from env)"
		} else if fileValues[ck.Key] != "" {
			source = " (from config file)"
		}

		display := "(not set)"
		if value != "" {
			if ck.Secret {
				display = maskSecret(value)
			} else {
				display = value
			}
		}

		reqTag := ""
		if ck.Required {
			reqTag = " *"
		}

		fmt.Fprintf(w, "  %-25s %s%s\n", ck.Key+reqTag, display, source)
	}

	fmt.Fprintln(w, "\n  * = required")
}

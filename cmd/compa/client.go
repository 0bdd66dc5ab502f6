package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat PROMPT",
	Short: "Ask the running server a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askServer(cmd, "/", strings.Join(args, " "))
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete PARTIAL",
	Short: "Autocomplete a partially typed question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askServer(cmd, "/autocomplete", strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(completeCmd)
}

var httpClient = &http.Client{Timeout: 2 * time.Minute}

type suggestion struct {
	Suggestion string `json:"suggestion"`
}

// askServer posts prompt to path on the server and prints the suggestion.
func askServer(cmd *cobra.Command, path, prompt string) error {
	body, _ := json.Marshal(map[string]string{"prompt": prompt})
	resp, err := httpClient.Post(strings.TrimRight(serverURL, "/")+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contacting server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	var out suggestion
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	w := cmd.OutOrStdout()
	if resp.StatusCode != http.StatusOK {
		color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), out.Suggestion)
		return fmt.Errorf("request failed (%d)", resp.StatusCode)
	}
	if path == "/autocomplete" && out.Suggestion != "" {
		fmt.Fprint(w, prompt+" ")
	}
	color.New(color.FgCyan).Fprintln(w, out.Suggestion)
	return nil
}

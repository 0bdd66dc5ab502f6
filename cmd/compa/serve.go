package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jxucoder/compa"
	"github.com/jxucoder/compa/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Compa HTTP server",
	Long: `Start the HTTP server exposing:

  POST /              {"prompt": "..."} -> {"suggestion": "..."}
  POST /autocomplete  {"prompt": "..."} -> {"suggestion": "..."}
  GET  /health

Telegram and Slack bots start too when their tokens are configured.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides COMPA_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	app, err := compa.NewBuilder().WithConfig(*cfg).Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Start(ctx)
}

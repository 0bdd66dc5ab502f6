// Package compa is the top-level entry point for the Compa relay.
//
// Use the Builder to compose an application:
//
//	app, err := compa.NewBuilder().WithConfig(cfg).Build()
//	app.Start(ctx)
//
// Or swap in a different completion provider:
//
//	app, err := compa.NewBuilder().
//	    WithConfig(cfg).
//	    WithLLM(myClient).
//	    Build()
package compa

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jxucoder/compa/internal/config"
	"github.com/jxucoder/compa/internal/httpapi"
	"github.com/jxucoder/compa/pkg/channel"
	slackChannel "github.com/jxucoder/compa/pkg/channel/slack"
	telegramChannel "github.com/jxucoder/compa/pkg/channel/telegram"
	"github.com/jxucoder/compa/pkg/llm"
	"github.com/jxucoder/compa/pkg/llm/openrouter"
	"github.com/jxucoder/compa/pkg/relay"
)

// Builder constructs a Compa App.
type Builder struct {
	config   config.Config
	llm      llm.Client
	channels []channel.Channel
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the application configuration.
func (b *Builder) WithConfig(cfg config.Config) *Builder {
	b.config = cfg
	return b
}

// WithLLM sets the completion provider. When unset, Build creates an
// OpenRouter client from the configuration.
func (b *Builder) WithLLM(client llm.Client) *Builder {
	b.llm = client
	return b
}

// WithChannel adds a channel (Slack, Telegram, etc.) to the application.
func (b *Builder) WithChannel(ch channel.Channel) *Builder {
	b.channels = append(b.channels, ch)
	return b
}

// Build validates the configuration and creates the App. Channels enabled
// in the configuration are added after any set with WithChannel.
func (b *Builder) Build() (*App, error) {
	if b.llm == nil {
		log.Printf("OPENROUTER_API_KEY is set: %t", b.config.OpenRouterAPIKey != "")
		if err := b.config.Validate(); err != nil {
			return nil, err
		}
		b.llm = openrouter.New(b.config.OpenRouterAPIKey, b.config.Model,
			openrouter.WithBaseURL(b.config.ProviderURL),
			openrouter.WithHTTPClient(&http.Client{Timeout: b.config.ProviderTimeout}),
		)
	}
	if b.config.ServerAddr == "" {
		b.config.ServerAddr = ":5000"
	}

	svc := relay.New(b.llm)

	channels := b.channels
	if b.config.TelegramEnabled() {
		bot, err := telegramChannel.NewBot(b.config.TelegramBotToken, svc)
		if err != nil {
			return nil, err
		}
		channels = append(channels, bot)
		log.Println("Telegram bot enabled (long polling)")
	}
	if b.config.SlackEnabled() {
		channels = append(channels, slackChannel.NewBot(b.config.SlackBotToken, b.config.SlackAppToken, svc))
		log.Println("Slack bot enabled (Socket Mode)")
	}

	return &App{
		config:   b.config,
		relay:    svc,
		handler:  httpapi.New(svc),
		channels: channels,
	}, nil
}

// App is a running Compa application.
type App struct {
	config   config.Config
	relay    *relay.Service
	handler  *httpapi.Handler
	channels []channel.Channel
}

// Relay returns the underlying relay service.
func (a *App) Relay() *relay.Service { return a.relay }

// Handler returns the HTTP handler, for embedding in another server.
func (a *App) Handler() http.Handler { return a.handler.Router() }

// Start starts the HTTP server and all channels. Blocks until ctx is done.
func (a *App) Start(ctx context.Context) error {
	for _, ch := range a.channels {
		ch := ch
		go func() {
			if err := ch.Run(ctx); err != nil {
				log.Printf("%s channel error: %v", ch.Name(), err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              a.config.ServerAddr,
		Handler:           a.handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Compa server listening on %s", a.config.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

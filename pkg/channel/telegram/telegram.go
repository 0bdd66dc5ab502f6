// Package telegram provides a Telegram bot channel for Compa.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jxucoder/compa/pkg/channel"
)

const helpText = `Hi, I'm Compa, your college senior bot.

Send me any question and I'll answer it.
/complete <start of a question> - I'll guess the rest
/help - show this message`

// Bot is the Telegram bot for Compa.
type Bot struct {
	api   *tgbotapi.BotAPI
	relay channel.Relay
}

// NewBot creates a new Telegram bot.
func NewBot(token string, r channel.Relay) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}

	log.Printf("Telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{api: api, relay: r}, nil
}

// Name returns the channel name.
func (b *Bot) Name() string { return "telegram" }

// Run starts the long-polling loop. Blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	log.Println("Telegram bot listening for messages...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				go b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := normalizeCommand(strings.TrimSpace(msg.Text))
	if text == "" {
		return
	}

	switch strings.ToLower(strings.Fields(text)[0]) {
	case "/start", "/help":
		b.sendReply(msg.Chat.ID, msg.MessageID, helpText)
		return
	}

	b.sendTyping(msg.Chat.ID)
	b.sendReply(msg.Chat.ID, msg.MessageID, channel.Reply(ctx, b.relay, b.Name(), text))
}

// normalizeCommand drops the "@botname" suffix Telegram adds to commands
// in group chats, so "/complete@compa_bot how" becomes "/complete how".
func normalizeCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	end := strings.IndexAny(text, " \n")
	if end < 0 {
		end = len(text)
	}
	if at := strings.Index(text[:end], "@"); at >= 0 {
		return text[:at] + text[end:]
	}
	return text
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("Telegram: failed to send typing action: %v", err)
	}
}

func (b *Bot) sendReply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Telegram: failed to send message: %v", err)
	}
}

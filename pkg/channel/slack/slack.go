// Package slack provides a Slack bot channel for Compa using Socket Mode.
package slack

import (
	"context"
	"log"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/jxucoder/compa/pkg/channel"
)

// Bot is the Slack Socket Mode bot for Compa. It answers app mentions in
// the mention's thread.
type Bot struct {
	api          *slack.Client
	socketClient *socketmode.Client
	relay        channel.Relay
}

// NewBot creates a new Slack Socket Mode bot.
func NewBot(botToken, appToken string, r channel.Relay) *Bot {
	api := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socketClient := socketmode.New(
		api,
		socketmode.OptionLog(log.New(log.Writer(), "slack-socketmode: ", log.LstdFlags)),
	)

	return &Bot{
		api:          api,
		socketClient: socketClient,
		relay:        r,
	}
}

// Name returns the channel name.
func (b *Bot) Name() string { return "slack" }

// Run connects to Slack via Socket Mode and processes events.
func (b *Bot) Run(ctx context.Context) error {
	go b.eventLoop(ctx)
	log.Println("Slack bot connecting via Socket Mode...")
	return b.socketClient.RunContext(ctx)
}

func (b *Bot) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socketClient.Events:
			if !ok {
				return
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Println("Slack: connecting...")
	case socketmode.EventTypeConnected:
		log.Println("Slack: connected")
	case socketmode.EventTypeConnectionError:
		log.Println("Slack: connection error, will retry...")
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketClient.Ack(*evt.Request)

		if eventsAPIEvent.Type == slackevents.CallbackEvent {
			if ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
				go b.handleMention(ctx, ev)
			}
		}
	}
}

func (b *Bot) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	prompt := stripMention(ev.Text)

	threadTS := ev.TimeStamp
	if ev.ThreadTimeStamp != "" {
		threadTS = ev.ThreadTimeStamp
	}

	if prompt == "" {
		b.postThread(ev.Channel, threadTS,
			"Ask me anything about college, e.g. `@compa which dorm is best for freshmen?`\nOr `@compa /complete how do I` to finish a question.")
		return
	}

	b.postThread(ev.Channel, threadTS, channel.Reply(ctx, b.relay, b.Name(), prompt))
}

// stripMention removes the leading "<@U123>" mention from a message.
func stripMention(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<@") {
		if idx := strings.Index(text, ">"); idx >= 0 {
			text = text[idx+1:]
		}
	}
	return strings.TrimSpace(text)
}

func (b *Bot) postThread(channel, threadTS, text string) {
	_, _, err := b.api.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		log.Printf("Slack: failed to post message to %s: %v", channel, err)
	}
}

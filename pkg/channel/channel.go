// Package channel defines the Channel interface for Compa chat transports
// and the reply logic they share.
package channel

import (
	"context"
	"log"
	"strings"

	"github.com/jxucoder/compa/pkg/relay"
)

// Channel represents an input/output transport (Slack, Telegram, etc.).
type Channel interface {
	Name() string
	Run(ctx context.Context) error
}

// Relay is the service a channel forwards messages to.
type Relay interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Autocomplete(ctx context.Context, prompt string) (string, error)
}

// CompleteCommand asks for an autocomplete continuation instead of a chat answer.
const CompleteCommand = "/complete"

const (
	emptyAnswer   = "Gemma had nothing to say. Try rephrasing?"
	completeUsage = "Usage: /complete <start of your question>"
)

// Reply runs a user message through the relay and returns the text to send
// back. Messages starting with CompleteCommand are autocompleted; anything
// else is answered by chat. Failures become the same messages the HTTP API
// returns. The result is never empty.
func Reply(ctx context.Context, r Relay, name, text string) string {
	text = strings.TrimSpace(text)

	if partial, ok := strings.CutPrefix(text, CompleteCommand); ok && (partial == "" || partial[0] == ' ' || partial[0] == '\n') {
		partial = strings.TrimSpace(partial)
		if partial == "" {
			return completeUsage
		}
		suggestion, err := r.Autocomplete(ctx, partial)
		if err != nil {
			log.Printf("%s: autocomplete error: %v", name, err)
			return relay.Failure(err, relay.MsgAutocompleteErr)
		}
		if suggestion == "" {
			return emptyAnswer
		}
		return partial + " " + suggestion
	}

	answer, err := r.Chat(ctx, text)
	if err != nil {
		log.Printf("%s: chat error: %v", name, err)
		return relay.Failure(err, relay.MsgChatFailed)
	}
	if answer == "" {
		return emptyAnswer
	}
	return answer
}

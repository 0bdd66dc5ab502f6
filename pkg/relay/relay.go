// Package relay turns user prompts into provider completions for the chat
// and autocomplete endpoints, and maps provider failures to the short
// messages shown to users.
package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/jxucoder/compa/pkg/llm"
)

const (
	chatSystemPrompt = "You are Compa, a helpful college senior bot. Answer as clearly and helpfully as possible. Do not autocomplete."

	autocompleteSystemPrompt = "You are Compa, a helpful college senior bot. For autocomplete, only return a short user question completion. Make sure your answer is related to college. Don't ask questions back."

	autocompleteTemplate = "User started typing: \"%s\"\nPredict their full question. ONLY return a possible continuation (no quotes, no intro, no explanation)."

	ChatMaxTokens         = 100
	AutocompleteMaxTokens = 30
)

// User-facing failure messages.
const (
	MsgQuota           = "Your token quota is over for today 💔"
	MsgContextTooLong  = "Your message is too long 💬✂️"
	MsgTimeout         = "Gemma took too long to respond ⏱️"
	MsgChatFailed      = "Gemma failed to respond 😓"
	MsgAutocompleteErr = "Failed to get autocomplete from Gemma"

	// FailurePrefix starts every failure suggestion.
	FailurePrefix = "Gemma: "
)

// Service relays prompts to an llm.Client. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	llm llm.Client
}

// New creates a Service backed by the given client.
func New(client llm.Client) *Service {
	return &Service{llm: client}
}

// Chat answers prompt as a full conversational reply. The prompt is
// forwarded as-is, even when empty.
func (s *Service) Chat(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, prompt, chatSystemPrompt, ChatMaxTokens)
}

// Autocomplete returns a short continuation of a partially typed query.
// A blank prompt returns "" without calling the provider.
func (s *Service) Autocomplete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}
	return s.complete(ctx, AutocompletePrompt(prompt), autocompleteSystemPrompt, AutocompleteMaxTokens)
}

func (s *Service) complete(ctx context.Context, prompt, system string, maxTokens int) (string, error) {
	raw, err := s.llm.Complete(ctx, system, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return Clean(raw), nil
}

// AutocompletePrompt wraps a partial query in the autocomplete instruction.
func AutocompletePrompt(partial string) string {
	return fmt.Sprintf(autocompleteTemplate, partial)
}

// Clean trims surrounding whitespace and then drops one leading run of
// ':', '"', '\n' and ' ' characters. Characters of that set elsewhere in
// the text are kept.
func Clean(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), ":\"\n ")
}

// Message maps a completion error to its user-facing text. fallback is
// used when the error is not a recognized kind.
func Message(err error, fallback string) string {
	switch llm.KindOf(err) {
	case llm.KindQuota:
		return MsgQuota
	case llm.KindContextTooLong:
		return MsgContextTooLong
	case llm.KindTimeout:
		return MsgTimeout
	default:
		return fallback
	}
}

// Failure is the full suggestion text returned to the caller on error.
func Failure(err error, fallback string) string {
	return FailurePrefix + Message(err, fallback)
}

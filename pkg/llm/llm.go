// Package llm defines the LLM client interface for Compa.
package llm

import (
	"context"
	"errors"
)

// Client is a minimal interface for making LLM API calls.
// Implementations provide the actual HTTP transport to a specific provider
// and report failures as *Error so callers can tell them apart.
type Client interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Kind classifies a failed completion.
type Kind int

const (
	KindUnknown Kind = iota
	KindQuota
	KindContextTooLong
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindContextTooLong:
		return "context_too_long"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a provider failure tagged with its Kind. Err is the raw
// transport or provider error and is kept for logging.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "llm: " + e.Kind.String()
	}
	return "llm: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

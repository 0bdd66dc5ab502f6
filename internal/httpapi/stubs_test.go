package httpapi

import (
	"context"
	"sync"
)

// stubLLM returns a canned response and records every call.
type stubLLM struct {
	mu       sync.Mutex
	calls    int
	users    []string
	response string
	err      error
	ctxErrs  []error
}

func (s *stubLLM) Complete(ctx context.Context, _, user string, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	s.users = append(s.users, user)
	return s.response, s.err
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

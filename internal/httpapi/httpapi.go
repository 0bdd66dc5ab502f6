// Package httpapi provides the Compa HTTP API handler.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jxucoder/compa/pkg/relay"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 1 << 20

// Relay is the service the handlers delegate to.
type Relay interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Autocomplete(ctx context.Context, prompt string) (string, error)
}

// Handler serves the chat and autocomplete endpoints.
type Handler struct {
	relay  Relay
	router chi.Router
}

// New creates a Handler backed by the given relay.
func New(r Relay) *Handler {
	h := &Handler{relay: r}
	h.router = h.buildRouter()
	return h
}

// Router returns the HTTP handler.
func (h *Handler) Router() http.Handler { return h.router }

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/", h.handleChat)
	r.Post("/autocomplete", h.handleAutocomplete)

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// suggestionResponse is used for both success and failure bodies; the
// status code tells them apart.
type suggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// --- Handlers ---

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	prompt := decodePrompt(w, r)

	suggestion, err := h.relay.Chat(outboundContext(r), prompt)
	if err != nil {
		log.Printf("[%s] chat: provider error: %v", requestIDFrom(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, suggestionResponse{
			Suggestion: relay.Failure(err, relay.MsgChatFailed),
		})
		return
	}

	writeJSON(w, http.StatusOK, suggestionResponse{Suggestion: suggestion})
}

func (h *Handler) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	prompt := decodePrompt(w, r)
	log.Printf("[%s] autocomplete request: %q", requestIDFrom(r.Context()), prompt)

	suggestion, err := h.relay.Autocomplete(outboundContext(r), prompt)
	if err != nil {
		log.Printf("[%s] autocomplete: provider error: %v", requestIDFrom(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, suggestionResponse{
			Suggestion: relay.Failure(err, relay.MsgAutocompleteErr),
		})
		return
	}

	writeJSON(w, http.StatusOK, suggestionResponse{Suggestion: suggestion})
}

// outboundContext keeps the request's values but not its cancellation: a
// provider call, once issued, runs to completion, error, or the client's
// own timeout even if the caller goes away.
func outboundContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// decodePrompt reads the prompt field. A missing, oversized or malformed
// body yields an empty prompt, the same as an absent field.
func decodePrompt(w http.ResponseWriter, r *http.Request) string {
	var req promptRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		log.Printf("[%s] ignoring unreadable request body: %v", requestIDFrom(r.Context()), err)
		return ""
	}
	return req.Prompt
}

// --- Request IDs ---

type ctxKey struct{}

// requestID tags each request with a short id, echoed in X-Request-ID and
// used as the log prefix for that request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()[:8]
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return "-"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxucoder/compa/pkg/llm"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "gen-1",
		"object":  "chat.completion",
		"model":   DefaultModel,
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newProvider(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// slowHandler never answers in time. It reads the body first so the server
// watches the connection and cancels r.Context() once the client gives up.
func slowHandler(w http.ResponseWriter, r *http.Request) {
	io.Copy(io.Discard, r.Body)
	select {
	case <-r.Context().Done():
	case <-time.After(2 * time.Second):
	}
}

func TestComplete_SendsFixedParameters(t *testing.T) {
	var got chatRequest
	var auth, path string
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse("Try North Hall"))
	})

	c := New("sk-or-test", "", WithBaseURL(srv.URL+"/api/v1/"))
	out, err := c.Complete(context.Background(), "be helpful", "What dorms are best?", 100)
	require.NoError(t, err)

	assert.Equal(t, "Try North Hall", out)
	assert.Equal(t, "Bearer sk-or-test", auth)
	assert.Equal(t, "/api/v1/chat/completions", path)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	assert.InDelta(t, 0.5, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be helpful", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "What dorms are best?", got.Messages[1].Content)
}

func TestComplete_CustomModel(t *testing.T) {
	var got chatRequest
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, chatResponse("ok"))
	})

	c := New("k", "meta-llama/llama-3-8b-instruct:free", WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), "s", "u", 30)
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/llama-3-8b-instruct:free", got.Model)
	assert.Equal(t, "meta-llama/llama-3-8b-instruct:free", c.Model())
}

func TestComplete_NoChoices(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"gen-2","choices":[]}`)
	})

	out, err := New("k", "", WithBaseURL(srv.URL)).Complete(context.Background(), "s", "u", 30)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestComplete_ErrorBodyWithOKStatus(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error":{"message":"upstream"}}`)
	})

	out, err := New("k", "", WithBaseURL(srv.URL)).Complete(context.Background(), "s", "u", 30)
	require.Error(t, err)
	assert.Equal(t, "", out)
	assert.Equal(t, llm.KindUnknown, llm.KindOf(err))
	assert.ErrorIs(t, err, errMissingChoices)
}

func TestComplete_ClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   llm.Kind
	}{
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"You exceeded your current quota, please check your plan","code":429}}`,
			want:   llm.KindQuota,
		},
		{
			name:   "context length in message",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"context_length_exceeded: prompt has 9000 tokens","code":400}}`,
			want:   llm.KindContextTooLong,
		},
		{
			name:   "context length in code",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"This model's maximum context length is 8192 tokens","code":"context_length_exceeded"}}`,
			want:   llm.KindContextTooLong,
		},
		{
			name:   "upstream timeout message",
			status: http.StatusBadGateway,
			body:   `{"error":{"message":"upstream timeout","code":502}}`,
			want:   llm.KindTimeout,
		},
		{
			name:   "other",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"provider returned error","code":500}}`,
			want:   llm.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := New("k", "", WithBaseURL(srv.URL)).Complete(context.Background(), "s", "u", 30)
			require.Error(t, err)

			var lerr *llm.Error
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, tt.want, lerr.Kind)
			assert.Equal(t, tt.want, llm.KindOf(err))
		})
	}
}

func TestComplete_ClientTimeout(t *testing.T) {
	srv := newProvider(t, slowHandler)

	c := New("k", "", WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.Complete(context.Background(), "s", "u", 30)
	require.Error(t, err)
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
}

func TestComplete_ContextDeadline(t *testing.T) {
	srv := newProvider(t, slowHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New("k", "", WithBaseURL(srv.URL)).Complete(ctx, "s", "u", 30)
	require.Error(t, err)
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
}

func TestClassify_ConnectionAborted(t *testing.T) {
	err := classify(fmt.Errorf("read tcp: %w", syscall.ECONNABORTED))
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
	assert.True(t, errors.Is(err, syscall.ECONNABORTED))
}

func TestClassify_PrecedenceQuotaBeforeTimeout(t *testing.T) {
	err := classify(errors.New("quota exhausted after timeout"))
	assert.Equal(t, llm.KindQuota, llm.KindOf(err))
}

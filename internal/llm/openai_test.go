package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solsift/solsift/internal/common"
)

func newTestOpenAIProvider(serverURL string) *openAIProvider {
	return &openAIProvider{
		apiKey:      "test-key",
		model:       "gpt-4-turbo-preview",
		baseURL:     serverURL,
		temperature: 0.3,
		maxTokens:   4096,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func openAITextResponse(text string) openAIResponse {
	var resp openAIResponse
	resp.Choices = []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{
		{FinishReason: "stop"},
	}
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = text
	return resp
}

func TestOpenAIProviderComplete(t *testing.T) {
	tests := []struct {
		name       string
		response   openAIResponse
		statusCode int
		wantText   string
		wantErr    bool
	}{
		{
			name:       "successful completion",
			response:   openAITextResponse(`{"tokens": []}`),
			statusCode: http.StatusOK,
			wantText:   `{"tokens": []}`,
		},
		{
			name:       "API error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name:       "no choices in response",
			response:   openAIResponse{},
			statusCode: http.StatusOK,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "gpt-4-turbo-preview", body["model"])

				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					_ = json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			p := newTestOpenAIProvider(server.URL)

			text, err := p.complete(context.Background(), "system prompt", "user payload")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestOpenAIProviderRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestOpenAIProvider(server.URL)

	_, err := p.complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func TestNewOpenAIProviderRequiresAPIKey(t *testing.T) {
	_, err := newOpenAIProvider(Config{})
	require.Error(t, err)
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	p, err := newOpenAIProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)

	op, ok := p.(*openAIProvider)
	require.True(t, ok)
	assert.Equal(t, "gpt-4-turbo-preview", op.model)
	assert.Equal(t, openAIBaseURL, op.baseURL)
}

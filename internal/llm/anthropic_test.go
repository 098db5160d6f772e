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

func newTestAnthropicProvider(serverURL string) *anthropicProvider {
	return &anthropicProvider{
		apiKey:      "test-key",
		model:       "claude-3-5-sonnet-20241022",
		baseURL:     serverURL,
		temperature: 0.3,
		maxTokens:   4096,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAnthropicProviderComplete(t *testing.T) {
	tests := []struct {
		name       string
		response   anthropicResponse
		statusCode int
		wantText   string
		wantErr    bool
	}{
		{
			name: "successful completion",
			response: anthropicResponse{
				Content: []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				}{
					{Type: "text", Text: `{"tokens": []}`},
				},
			},
			statusCode: http.StatusOK,
			wantText:   `{"tokens": []}`,
		},
		{
			name:       "API error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name: "no content in response",
			response: anthropicResponse{
				Content: []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				}{},
			},
			statusCode: http.StatusOK,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/messages", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "claude-3-5-sonnet-20241022", body["model"])
				assert.Equal(t, "system prompt", body["system"])

				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					_ = json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			p := newTestAnthropicProvider(server.URL)

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

func TestAnthropicProviderRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestAnthropicProvider(server.URL)

	_, err := p.complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func TestNewAnthropicProviderRequiresAPIKey(t *testing.T) {
	_, err := newAnthropicProvider(Config{})
	require.Error(t, err)
}

func TestNewAnthropicProviderDefaults(t *testing.T) {
	p, err := newAnthropicProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)

	ap, ok := p.(*anthropicProvider)
	require.True(t, ok)
	assert.Equal(t, "claude-3-5-sonnet-20241022", ap.model)
	assert.Equal(t, anthropicBaseURL, ap.baseURL)
	assert.Equal(t, 0.3, ap.temperature)
	assert.Equal(t, 4096, ap.maxTokens)
}

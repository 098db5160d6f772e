package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain content unchanged",
			input:    `{"score": 0.8}`,
			expected: `{"score": 0.8}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "bare fence stripped",
			input:    "```\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanMarkdownWrapper(tt.input))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Run("object with surrounding prose", func(t *testing.T) {
		input := `Here is my analysis: {"tokens": [{"address": "abc", "score": 0.7}]} Hope that helps!`

		got, err := ExtractJSON(input)
		require.NoError(t, err)
		assert.Equal(t, `{"tokens": [{"address": "abc", "score": 0.7}]}`, got)
	})

	t.Run("top-level array", func(t *testing.T) {
		got, err := ExtractJSON(`[1, 2, 3]`)
		require.NoError(t, err)
		assert.Equal(t, `[1, 2, 3]`, got)
	})

	t.Run("braces inside strings ignored", func(t *testing.T) {
		input := `{"note": "uses {curly} braces", "n": 1}`

		got, err := ExtractJSON(input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		input := `{"note": "a \"quoted\" value"}`

		got, err := ExtractJSON(input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	})

	t.Run("fenced response", func(t *testing.T) {
		got, err := ExtractJSON("```json\n{\"score\": 1}\n```")
		require.NoError(t, err)
		assert.Equal(t, `{"score": 1}`, got)
	})

	t.Run("no JSON is an error", func(t *testing.T) {
		_, err := ExtractJSON("I could not produce an answer.")
		assert.Error(t, err)
	})

	t.Run("unbalanced JSON is an error", func(t *testing.T) {
		_, err := ExtractJSON(`{"tokens": [`)
		assert.Error(t, err)
	})
}

package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDisabled(t *testing.T) {
	s := NewOpenAISummarizer("", "")

	got, err := s.Summarize(context.Background(), []string{"Bitcoin up"}, "en")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, s.Enabled())
}

func TestSummarize(t *testing.T) {
	var prompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		prompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Le bitcoin monte. L'ether baisse"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("key")
	cfg.BaseURL = server.URL + "/v1"

	s := NewOpenAISummarizerWithConfig(cfg, "")

	got, err := s.Summarize(context.Background(), []string{"Bitcoin rises", "Ether falls"}, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Le bitcoin monte.", got)
	assert.Contains(t, prompt, "in French")
	assert.Contains(t, prompt, "Bitcoin rises\nEther falls")
}

func TestCompleteSentences(t *testing.T) {
	assert.Equal(t, "One. Two.", completeSentences(" One. Two. "))
	assert.Equal(t, "One.", completeSentences("One. Tw"))
	assert.Equal(t, "No period", completeSentences("No period"))
	assert.Equal(t, "", completeSentences(""))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "French", LanguageName("FR"))
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "English", LanguageName(""))
}

func TestCustomPromptValidated(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "empty", prompt: "", want: defaultPrompt},
		{name: "valid", prompt: "In %s, summarize:\n%s", want: "In %s, summarize:\n%s"},
		{name: "missing verb", prompt: "Summarize in %s", want: defaultPrompt},
		{name: "extra verb", prompt: "%s %s %s", want: defaultPrompt},
		{name: "wrong verb", prompt: "%s %d", want: defaultPrompt},
		{name: "no verbs", prompt: "Summarize the news", want: defaultPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewOpenAISummarizer("", tt.prompt).prompt)
		})
	}
}

package summary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const defaultPrompt = "Summarize the following crypto news headlines in %s. Keep it under 250 characters:\n%s"

// OpenAISummarizer сводка по заголовкам через chat completion
type OpenAISummarizer struct {
	client *openai.Client
	// Шаблон с двумя %s: язык и заголовки
	prompt string
	// Флаг вкл/выкл summarizer
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey string, prompt string) *OpenAISummarizer {
	return newSummarizer(openai.NewClient(apiKey), apiKey != "", prompt)
}

// NewOpenAISummarizerWithConfig для совместимых с OpenAI API серверов
func NewOpenAISummarizerWithConfig(cfg openai.ClientConfig, prompt string) *OpenAISummarizer {
	return newSummarizer(openai.NewClientWithConfig(cfg), true, prompt)
}

func newSummarizer(client *openai.Client, enabled bool, prompt string) *OpenAISummarizer {
	if prompt == "" {
		prompt = defaultPrompt
	} else if !validPrompt(prompt) {
		log.Printf("[WARN] openai prompt must contain exactly two %%s (language, headlines), using default")
		prompt = defaultPrompt
	}

	log.Printf("[INFO] openai summarizer enabled: %v", enabled)

	return &OpenAISummarizer{
		client:  client,
		prompt:  prompt,
		enabled: enabled,
	}
}

func (s *OpenAISummarizer) Enabled() bool {
	return s != nil && s.enabled
}

// Summarize возвращает пустую строку, если ключа нет
func (s *OpenAISummarizer) Summarize(ctx context.Context, headlines []string, language string) (string, error) {
	// Обкладываем мьютексами, т.к. конкурентный доступ может вызывать сюрпризы
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || len(headlines) == 0 {
		return "", nil
	}

	request := openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(s.prompt, LanguageName(language), strings.Join(headlines, "\n")),
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	return completeSentences(resp.Choices[0].Message.Content), nil
}

// LanguageName fr - французский, все остальное английский
func LanguageName(language string) string {
	if strings.EqualFold(strings.TrimSpace(language), "fr") {
		return "French"
	}

	return "English"
}

// Модель может оборвать ответ на середине предложения, отрезаем хвост до последней точки
func completeSentences(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	sentences := strings.Split(raw, ".")
	if len(sentences) == 1 {
		return raw
	}

	return strings.Join(sentences[:len(sentences)-1], ".") + "."
}

// validPrompt шаблон принимает ровно два аргумента: язык и заголовки
func validPrompt(prompt string) bool {
	return !strings.Contains(fmt.Sprintf(prompt, "language", "headlines"), "%!")
}

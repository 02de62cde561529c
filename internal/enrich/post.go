package enrich

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxPostLength лимит символов одного поста
	MaxPostLength = 280
	// Ellipsis маркер обрезанного текста
	Ellipsis = "..."

	maxTitleLength = 200
	postCutLength  = 250
)

// PostText собирает текст поста: заголовок, ссылка и хэштеги через пустую строку.
func PostText(title, url string, hashtags []string) string {
	parts := []string{Truncate(title, maxTitleLength)}

	if url != "" {
		parts = append(parts, url)
	}

	if len(hashtags) > 0 {
		parts = append(parts, strings.Join(hashtags, " "))
	}

	return FitPost(strings.Join(parts, "\n\n"))
}

// FitPost обрезает текст до 250 символов с маркером, если он не влезает в 280.
func FitPost(text string) string {
	if utf8.RuneCountInString(text) <= MaxPostLength {
		return text
	}

	return string([]rune(text)[:postCutLength]) + Ellipsis
}

// Truncate обрезает строку по символам, а не по байтам
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	return string([]rune(s)[:max]) + Ellipsis
}

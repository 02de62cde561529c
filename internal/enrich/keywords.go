package enrich

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const maxKeywords = 5

// Все латинские слова от 4 букв
var wordPattern = regexp.MustCompile(`[a-z]{4,}`)

// Keywords достает первые 5 уникальных слов в порядке появления.
func Keywords(title, description string) []string {
	words := wordPattern.FindAllString(strings.ToLower(title+" "+description), -1)

	keywords := lo.Uniq(words)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return keywords
}

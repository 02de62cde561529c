package enrich

import (
	"strings"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
)

var (
	bullishCues = []string{"gain", "surge", "rise", "bull", "pump", "moon", "adoption", "growth"}
	bearishCues = []string{"loss", "crash", "fall", "bear", "dump", "decline", "delay", "ban"}
)

// Sentiment сравнивает сколько слов из каждого списка встречается в заголовке и описании.
// При равенстве (в том числе 0:0) статья нейтральная.
func Sentiment(title, description string) model.Sentiment {
	text := strings.ToLower(title + " " + description)

	bullish := countCues(text, bullishCues)
	bearish := countCues(text, bearishCues)

	switch {
	case bullish > bearish:
		return model.SentimentBullish
	case bearish > bullish:
		return model.SentimentBearish
	default:
		return model.SentimentNeutral
	}
}

// Каждое слово считается один раз, сколько бы раз оно ни встретилось
func countCues(text string, cues []string) int {
	return lo.CountBy(cues, func(cue string) bool {
		return strings.Contains(text, cue)
	})
}

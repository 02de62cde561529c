package fetcher

import (
	"strings"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
)

// Filter фильтр ленты на дашборде: по настроению и по подстроке в заголовке или ключевых словах
type Filter struct {
	// Пусто или "all" - без фильтра
	Sentiment string
	Query     string
}

func (flt Filter) Apply(articles []model.Article) []model.Article {
	query := strings.ToLower(strings.TrimSpace(flt.Query))

	return lo.Filter(articles, func(a model.Article, _ int) bool {
		if flt.Sentiment != "" && flt.Sentiment != "all" && string(a.Sentiment) != flt.Sentiment {
			return false
		}

		if query == "" {
			return true
		}

		return strings.Contains(strings.ToLower(a.Title), query) ||
			lo.SomeBy(a.Keywords, func(k string) bool {
				return strings.Contains(strings.ToLower(k), query)
			})
	})
}

type Stats struct {
	Total        int `json:"total"`
	Bullish      int `json:"bullish"`
	Bearish      int `json:"bearish"`
	Neutral      int `json:"neutral"`
	AvgRelevance int `json:"avgRelevance"`
}

func Summarize(articles []model.Article) Stats {
	stats := Stats{Total: len(articles)}

	sum := 0
	for _, a := range articles {
		sum += a.RelevanceScore

		switch a.Sentiment {
		case model.SentimentBullish:
			stats.Bullish++
		case model.SentimentBearish:
			stats.Bearish++
		default:
			stats.Neutral++
		}
	}

	if len(articles) > 0 {
		stats.AvgRelevance = (sum + len(articles)/2) / len(articles)
	}

	return stats
}

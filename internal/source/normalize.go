package source

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/kovalyov-valentin/cryptoflow/internal/enrich"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tomakado/containers/set"
)

const (
	untitled          = "Untitled"
	maxSummaryLength  = 150
	defaultMaxPerFeed = 10
)

var strictPolicy = bluemonday.StrictPolicy()

type normalizer struct {
	maxItems       int
	filterKeywords []string
}

// normalize превращает элементы ленты в статьи.
// id строится из источника, времени загрузки и позиции, этого хватает для уникальности внутри одной выборки.
func (n normalizer) normalize(src model.Source, items []model.Item, fetchedAt time.Time) []model.Article {
	limit := n.maxItems
	if limit <= 0 {
		limit = defaultMaxPerFeed
	}

	articles := make([]model.Article, 0, min(limit, len(items)))

	for _, item := range items {
		if len(articles) == limit {
			break
		}

		if n.itemShouldBeSkipped(item) {
			continue
		}

		title := item.Title
		if title == "" {
			title = untitled
		}

		publishedAt := item.Date
		if publishedAt.IsZero() {
			publishedAt = fetchedAt
		}

		articles = append(articles, enrich.Apply(model.Article{
			ID:          fmt.Sprintf("%s-%d-%d", src.ID, fetchedAt.UnixMilli(), len(articles)),
			Title:       title,
			Description: summarize(item),
			URL:         item.Link,
			Source:      src.Name,
			SourceID:    src.ID,
			PublishedAt: publishedAt.UTC(),
			ImageURL:    item.ImageURL,
		}))
	}

	return articles
}

// Пропускаем статьи, у которых в заголовке или категориях есть стоп-слово
func (n normalizer) itemShouldBeSkipped(item model.Item) bool {
	if len(n.filterKeywords) == 0 {
		return false
	}

	categoriesSet := set.New(item.Categories...)
	title := strings.ToLower(item.Title)

	for _, keyword := range n.filterKeywords {
		if categoriesSet.Contains(keyword) || strings.Contains(title, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

func summarize(item model.Item) string {
	text := stripHTML(item.Snippet)
	if text == "" && item.Content != "" {
		text = contentText(item.Content)
	}

	return enrich.Truncate(text, maxSummaryLength)
}

// stripHTML убирает теги, раскодирует сущности и схлопывает пробелы
func stripHTML(s string) string {
	if s == "" {
		return ""
	}

	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy.Sanitize(s))), " ")
}

// Для content:encoded пробуем readability, на коротких фрагментах он может ничего не найти
func contentText(content string) string {
	doc, err := readability.FromReader(strings.NewReader(content), nil)
	if err == nil {
		if text := strings.Join(strings.Fields(doc.TextContent), " "); text != "" {
			return text
		}
	}

	return stripHTML(content)
}

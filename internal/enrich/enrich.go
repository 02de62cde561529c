// Package enrich derives metadata for articles from their title and description.
// Everything here is pure: no I/O, no shared state.
package enrich

import "github.com/kovalyov-valentin/cryptoflow/internal/model"

// RelevanceScore пока одинаковый для всех статей
const RelevanceScore = 80

// Apply заполняет производные поля статьи.
func Apply(article model.Article) model.Article {
	article.Keywords = Keywords(article.Title, article.Description)
	article.Sentiment = Sentiment(article.Title, article.Description)
	article.RelevanceScore = RelevanceScore
	article.Hashtags = Hashtags(article.Keywords)
	article.PostText = PostText(article.Title, article.URL, article.Hashtags)

	return article
}

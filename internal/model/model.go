package model

import "time"

// Настроение статьи, всегда одно из трех значений
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Источник новостей из реестра
type Source struct {
	// Уникальный ключ, например coindesk
	ID string `json:"id"`
	// Имя для отображения
	Name string `json:"name"`
	// Урл откуда забираем ленту
	FeedURL string `json:"feedUrl"`
	// Флаг активности
	Active bool `json:"isActive"`
	// Время последней попытки загрузки
	LastFetched time.Time `json:"lastFetched,omitempty"`
	// Сколько статей пришло при последней загрузке
	ArticleCount int `json:"articlesCount"`
}

// Статья как элемент ленты, сразу после парсинга
type Item struct {
	Title string
	Link  string
	// Дата публикации в источнике, нулевая если не удалось распарсить
	Date time.Time
	// Краткая выжимка в виде текста
	Snippet string
	// HTML контент (content:encoded)
	Content    string
	Categories []string
	ImageURL   string
	SourceID   string
}

// Модель статьи, которая ходит по всему пайплайну
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	SourceID    string    `json:"sourceId"`
	PublishedAt time.Time `json:"publishedAt"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Keywords    []string  `json:"keywords"`
	Sentiment   Sentiment `json:"sentiment"`
	// Пока константа
	RelevanceScore int      `json:"relevanceScore"`
	Hashtags       []string `json:"hashtags"`
	// Готовый текст для соцсети
	PostText string `json:"tweetText"`
}

type PostStatus string

const (
	PostScheduled PostStatus = "scheduled"
	PostPosted    PostStatus = "posted"
	PostFailed    PostStatus = "failed"
)

// Запланированный пост
type ScheduledPost struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       PostStatus `json:"status"`
	ArticleID    string     `json:"articleId"`
	ArticleURL   string     `json:"articleUrl"`
	Hashtags     []string   `json:"hashtags"`
	CreatedAt    time.Time  `json:"createdAt"`
}

package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kovalyov-valentin/cryptoflow/internal/enrich"
	"github.com/kovalyov-valentin/cryptoflow/internal/metrics"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/kovalyov-valentin/cryptoflow/internal/poster"
)

const (
	defaultDigestSize    = 5
	defaultCheckInterval = time.Minute
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleProvider interface {
	FetchAll(ctx context.Context, sourceIDs []string, useCache bool) ([]model.Article, error)
}

// PostedStorage отмечает уже опубликованные ссылки, ключ дедупликации это URL статьи
type PostedStorage interface {
	HasPosted(ctx context.Context, url string) (bool, error)
	MarkPosted(ctx context.Context, url string) error
}

type ScheduleStorage interface {
	Add(ctx context.Context, post model.ScheduledPost) error
	Due(ctx context.Context, now time.Time) ([]model.ScheduledPost, error)
	SetStatus(ctx context.Context, id string, status model.PostStatus) error
	All(ctx context.Context) ([]model.ScheduledPost, error)
}

type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, headlines []string, language string) (string, error)
}

type Config struct {
	// Интервал автопостинга
	SendInterval time.Duration
	// Как часто проверяем запланированные посты
	CheckInterval time.Duration
	AutoPost      bool
	// Сколько заголовков идет в сводку
	DigestSize int
}

// Result итог одного запуска публикации
type Result struct {
	Posted bool `json:"posted"`
	// Соцсеть сказала, что лимит исчерпан, повторим в следующий запуск
	Skipped    bool   `json:"skipped"`
	PostID     string `json:"postId,omitempty"`
	ArticleURL string `json:"articleUrl,omitempty"`
	Message    string `json:"message"`
}

type Notifier struct {
	// Провайдер для статей
	articles ArticleProvider
	posted   PostedStorage
	schedule ScheduleStorage
	// Куда постим, nil если не хватило ключей
	poster poster.Poster
	// Компонент, который будет генерить сводку, может быть nil
	summarizer Summarizer

	sendInterval  time.Duration
	checkInterval time.Duration
	autoPost      bool
	digestSize    int

	now func() time.Time

	// Одна публикация за раз, иначе два триггера запостят одну статью дважды
	mu sync.Mutex
}

func New(
	articles ArticleProvider,
	posted PostedStorage,
	schedule ScheduleStorage,
	p poster.Poster,
	summarizer Summarizer,
	cfg Config,
) *Notifier {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = time.Hour
	}
	if cfg.DigestSize <= 0 {
		cfg.DigestSize = defaultDigestSize
	}

	return &Notifier{
		articles:      articles,
		posted:        posted,
		schedule:      schedule,
		poster:        p,
		summarizer:    summarizer,
		sendInterval:  cfg.SendInterval,
		checkInterval: cfg.CheckInterval,
		autoPost:      cfg.AutoPost,
		digestSize:    cfg.DigestSize,
		now:           time.Now,
	}
}

// Start проверяет запланированные посты и, если включено, постит свежие статьи по таймеру.
// Каждый прогон конечен, ошибки только логируются.
func (n *Notifier) Start(ctx context.Context) error {
	checkTicker := time.NewTicker(n.checkInterval)
	defer checkTicker.Stop()

	sendTicker := time.NewTicker(n.sendInterval)
	defer sendTicker.Stop()

	n.processDue(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-checkTicker.C:
			n.processDue(ctx)
		case <-sendTicker.C:
			if !n.autoPost {
				continue
			}

			if _, err := n.SelectAndSendArticle(ctx); err != nil {
				log.Printf("[ERROR] auto post: %v", err)
			}
		}
	}
}

// Post публикует сводку на языке language, если есть summarizer, иначе одну статью
func (n *Notifier) Post(ctx context.Context, language string) (Result, error) {
	if language != "" {
		return n.Digest(ctx, language)
	}

	return n.SelectAndSendArticle(ctx)
}

// SelectAndSendArticle выбирает самую свежую неопубликованную статью и отправляет ее
func (n *Notifier) SelectAndSendArticle(ctx context.Context) (Result, error) {
	if n.poster == nil {
		return Result{}, poster.ErrMissingCredentials
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	candidates, err := n.unposted(ctx, 1)
	if err != nil {
		return Result{}, err
	}

	// Если нет статьи, то ничего не делаем
	if len(candidates) == 0 {
		return Result{Message: "no new articles to post"}, nil
	}

	article := candidates[0]

	text := article.PostText
	if text == "" {
		text = enrich.PostText(article.Title, article.URL, article.Hashtags)
	}

	result, err := n.send(ctx, enrich.FitPost(text), article.URL)
	if err != nil || !result.Posted {
		return result, err
	}

	result.Message = "posted: " + article.Title

	return result, nil
}

// Digest сводка по нескольким свежим заголовкам одним постом, все вошедшие ссылки считаются опубликованными
func (n *Notifier) Digest(ctx context.Context, language string) (Result, error) {
	if n.summarizer == nil || !n.summarizer.Enabled() {
		return n.SelectAndSendArticle(ctx)
	}

	if n.poster == nil {
		return Result{}, poster.ErrMissingCredentials
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	candidates, err := n.unposted(ctx, n.digestSize)
	if err != nil {
		return Result{}, err
	}

	if len(candidates) == 0 {
		return Result{Message: "no new articles to post"}, nil
	}

	headlines := make([]string, 0, len(candidates))
	urls := make([]string, 0, len(candidates))
	for _, article := range candidates {
		headlines = append(headlines, article.Title)
		urls = append(urls, article.URL)
	}

	summary, err := n.summarizer.Summarize(ctx, headlines, language)
	if err != nil {
		return Result{}, fmt.Errorf("summarize headlines: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return Result{Message: "summary is empty, nothing posted"}, nil
	}

	result, err := n.send(ctx, enrich.FitPost(summary+"\n\n"+enrich.TrailingHashtag), urls...)
	if err != nil || !result.Posted {
		return result, err
	}

	result.Message = fmt.Sprintf("posted digest of %d articles", len(candidates))

	return result, nil
}

// Schedule ставит пост по статье на время at, нулевое время означает "как можно скорее"
func (n *Notifier) Schedule(ctx context.Context, articleID string, at time.Time) (model.ScheduledPost, error) {
	articles, err := n.articles.FetchAll(ctx, nil, true)
	if err != nil {
		return model.ScheduledPost{}, fmt.Errorf("fetch articles: %w", err)
	}

	var (
		article model.Article
		found   bool
	)
	for _, a := range articles {
		if a.ID == articleID {
			article, found = a, true
			break
		}
	}

	if !found {
		return model.ScheduledPost{}, fmt.Errorf("%w: %s", ErrArticleNotFound, articleID)
	}

	now := n.now().UTC()
	if at.IsZero() {
		at = now
	}

	text := article.PostText
	if text == "" {
		text = enrich.PostText(article.Title, article.URL, article.Hashtags)
	}

	post := model.ScheduledPost{
		ID:           uuid.NewString(),
		Text:         enrich.FitPost(text),
		ScheduledFor: at.UTC(),
		Status:       model.PostScheduled,
		ArticleID:    article.ID,
		ArticleURL:   article.URL,
		Hashtags:     article.Hashtags,
		CreatedAt:    now,
	}

	if err := n.schedule.Add(ctx, post); err != nil {
		return model.ScheduledPost{}, fmt.Errorf("add scheduled post: %w", err)
	}

	log.Printf("[INFO] scheduled post %s for %s at %s", post.ID, post.ArticleURL, post.ScheduledFor.Format(time.RFC3339))

	return post, nil
}

func (n *Notifier) Scheduled(ctx context.Context) ([]model.ScheduledPost, error) {
	return n.schedule.All(ctx)
}

// ProcessDue отправляет запланированные посты, чье время пришло.
// При исчерпании лимита оставшиеся посты ждут следующей проверки.
func (n *Notifier) ProcessDue(ctx context.Context) (int, error) {
	if n.poster == nil {
		return 0, poster.ErrMissingCredentials
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	due, err := n.schedule.Due(ctx, n.now())
	if err != nil {
		return 0, fmt.Errorf("select due posts: %w", err)
	}

	var sent int
	for _, post := range due {
		if post.ArticleURL != "" {
			posted, err := n.posted.HasPosted(ctx, post.ArticleURL)
			if err != nil {
				return sent, err
			}

			if posted {
				log.Printf("[INFO] scheduled post %s: %s already posted", post.ID, post.ArticleURL)
				if err := n.schedule.SetStatus(ctx, post.ID, model.PostPosted); err != nil {
					return sent, err
				}
				continue
			}
		}

		result, err := n.send(ctx, post.Text, post.ArticleURL)
		if err != nil {
			log.Printf("[ERROR] scheduled post %s: %v", post.ID, err)
			if err := n.schedule.SetStatus(ctx, post.ID, model.PostFailed); err != nil {
				return sent, err
			}
			continue
		}

		if result.Skipped {
			break
		}

		if err := n.schedule.SetStatus(ctx, post.ID, model.PostPosted); err != nil {
			return sent, err
		}
		sent++
	}

	return sent, nil
}

func (n *Notifier) processDue(ctx context.Context) {
	if n.poster == nil {
		return
	}

	if _, err := n.ProcessDue(ctx); err != nil {
		log.Printf("[ERROR] process scheduled posts: %v", err)
	}
}

// unposted до limit самых свежих статей с непустым URL, которые еще не публиковались
func (n *Notifier) unposted(ctx context.Context, limit int) ([]model.Article, error) {
	articles, err := n.articles.FetchAll(ctx, nil, true)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	var out []model.Article
	for _, article := range articles {
		if article.URL == "" {
			continue
		}

		posted, err := n.posted.HasPosted(ctx, article.URL)
		if err != nil {
			return nil, fmt.Errorf("check posted %s: %w", article.URL, err)
		}

		if posted {
			continue
		}

		out = append(out, article)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// send постит текст и отмечает ссылки опубликованными.
// Исчерпанный лимит не ошибка: отдаем Skipped, следующий запуск попробует еще раз.
func (n *Notifier) send(ctx context.Context, text string, urls ...string) (Result, error) {
	id, err := n.poster.Post(ctx, text)
	if err != nil {
		if poster.IsRateLimited(err) {
			metrics.Post("skipped")
			log.Printf("[WARN] post skipped, rate limited: %v", err)

			return Result{Skipped: true, Message: "rate limited, skipped, will retry later"}, nil
		}

		metrics.Post("failed")
		return Result{}, err
	}

	metrics.Post("posted")

	var first string
	for _, url := range urls {
		if url == "" {
			continue
		}
		if first == "" {
			first = url
		}

		if err := n.posted.MarkPosted(ctx, url); err != nil {
			return Result{}, fmt.Errorf("mark posted %s: %w", url, err)
		}
	}

	log.Printf("[INFO] posted %s (%s)", id, first)

	return Result{Posted: true, PostID: id, ArticleURL: first}, nil
}

package cache

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/metrics"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
)

// DefaultDuration окно свежести по умолчанию
const DefaultDuration = 15 * time.Minute

type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) ([]model.Article, error)
}

type SourceLister interface {
	All() []model.Source
}

type entry struct {
	articles  []model.Article
	fetchedAt time.Time
}

// Cache read-through кэш по источникам.
// Устаревшие записи не удаляются: при ошибке загрузки отдаем последнюю удачную выборку.
type Cache struct {
	fetcher  Fetcher
	sources  SourceLister
	duration time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

func New(fetcher Fetcher, sources SourceLister, duration time.Duration) *Cache {
	if duration <= 0 {
		duration = DefaultDuration
	}

	return &Cache{
		fetcher:  fetcher,
		sources:  sources,
		duration: duration,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
}

// Get возвращает свежую запись без сети если allowCache, иначе идет в источник.
// Ошибка возвращается только вместе с пустым списком, когда загрузка упала и в кэше ничего нет.
func (c *Cache) Get(ctx context.Context, sourceID string, allowCache bool) ([]model.Article, error) {
	cached, ok := c.lookup(sourceID)

	if allowCache && ok && c.fresh(cached) {
		metrics.Cache(sourceID, "hit")
		return slices.Clone(cached.articles), nil
	}

	articles, err := c.fetcher.Fetch(ctx, sourceID)
	metrics.Fetch(sourceID, err)

	if err != nil {
		if ok {
			log.Printf("[WARN] %v; serving cached articles from %s", err, cached.fetchedAt.Format(time.RFC3339))
			metrics.Cache(sourceID, "stale")
			return slices.Clone(cached.articles), nil
		}

		log.Printf("[ERROR] %v; no cached articles", err)
		metrics.Cache(sourceID, "empty")
		return []model.Article{}, err
	}

	c.store(sourceID, articles)
	metrics.Cache(sourceID, "miss")

	return slices.Clone(articles), nil
}

// Invalidate чистит записи указанных источников, без аргументов чистит все
func (c *Cache) Invalidate(sourceIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(sourceIDs) == 0 {
		c.entries = make(map[string]entry)
		return
	}

	for _, id := range sourceIDs {
		delete(c.entries, id)
	}
}

type SourceStats struct {
	Source   string `json:"source"`
	Cached   bool   `json:"cached"`
	Fresh    bool   `json:"fresh"`
	AgeMs    int64  `json:"ageMs"`
	Articles int    `json:"articles"`
}

// Stats по каждому настроенному источнику, для наблюдения а не для логики
func (c *Cache) Stats() []SourceStats {
	sources := c.sources.All()
	stats := make([]SourceStats, 0, len(sources))

	for _, src := range sources {
		s := SourceStats{Source: src.ID}

		if cached, ok := c.lookup(src.ID); ok {
			s.Cached = true
			s.Fresh = c.fresh(cached)
			s.AgeMs = c.now().Sub(cached.fetchedAt).Milliseconds()
			s.Articles = len(cached.articles)
		}

		stats = append(stats, s)
	}

	return stats
}

func (c *Cache) lookup(sourceID string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[sourceID]
	return e, ok
}

func (c *Cache) store(sourceID string, articles []model.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sourceID] = entry{articles: slices.Clone(articles), fetchedAt: c.now()}
}

func (c *Cache) fresh(e entry) bool {
	return c.now().Sub(e.fetchedAt) < c.duration
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kovalyov-valentin/cryptoflow/internal/metrics"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxArticles сколько статей максимум отдаем из одной агрегации
const DefaultMaxArticles = 50

// DefaultRefreshInterval как часто обновляем ленты в фоне по умолчанию
const DefaultRefreshInterval = 30 * time.Minute

// ErrAllSourcesFailed все выбранные источники упали и кэша ни у кого нет
var ErrAllSourcesFailed = errors.New("all sources failed")

type ArticleCache interface {
	Get(ctx context.Context, sourceID string, allowCache bool) ([]model.Article, error)
}

type SourceProvider interface {
	// Активные источники в порядке реестра
	IDs() []string
	Position(id string) int
}

// Структура агрегатора
type Fetcher struct {
	cache   ArticleCache
	sources SourceProvider

	// Сколько статей отдаем после сортировки
	maxArticles int
	// Как часто обновляем ленты в фоне
	refreshInterval time.Duration

	// Одновременные одинаковые запросы схлопываются в один
	group singleflight.Group

	mu       sync.RWMutex
	latest   []model.Article
	latestAt time.Time
}

func NewFetcher(cache ArticleCache, sources SourceProvider, maxArticles int, refreshInterval time.Duration) *Fetcher {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}

	return &Fetcher{
		cache:           cache,
		sources:         sources,
		maxArticles:     maxArticles,
		refreshInterval: refreshInterval,
	}
}

// Start периодически обновляет ленты, пока жив контекст.
// Ошибки отдельных прогонов только логируются, следующий тикер попробует снова.
func (f *Fetcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.refreshInterval)
	defer ticker.Stop()

	f.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.refresh(ctx)
		}
	}
}

func (f *Fetcher) refresh(ctx context.Context) {
	if _, err := f.FetchAll(ctx, nil, true); err != nil {
		log.Printf("[ERROR] auto refresh: %v", err)
	}
}

// Latest последняя удачная агрегация и время, когда она была получена
func (f *Fetcher) Latest() ([]model.Article, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.latest), f.latestAt
}

// FetchAll опрашивает источники параллельно, ждет всех, сливает и сортирует по дате.
// Пустой sourceIDs означает все активные источники.
func (f *Fetcher) FetchAll(ctx context.Context, sourceIDs []string, useCache bool) ([]model.Article, error) {
	ids := f.selection(sourceIDs)
	key := strings.Join(ids, ",") + "|" + strconv.FormatBool(useCache)

	// Общая загрузка не зависит от отмены того, кто ее начал: к ней могли присоединиться другие.
	// Каждый вызывающий ждет ее только пока жив его собственный контекст.
	ch := f.group.DoChan(key, func() (interface{}, error) {
		return f.fetchAll(context.WithoutCancel(ctx), ids, useCache)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		return nil, res.Err
	}

	articles := slices.Clone(res.Val.([]model.Article))

	if len(sourceIDs) == 0 {
		f.mu.Lock()
		f.latest = slices.Clone(articles)
		f.latestAt = time.Now()
		f.mu.Unlock()
	}

	return articles, nil
}

// Источники уникальные и в порядке реестра, от этого зависит порядок статей с одинаковой датой
func (f *Fetcher) selection(sourceIDs []string) []string {
	if len(sourceIDs) == 0 {
		return f.sources.IDs()
	}

	ids := lo.Uniq(sourceIDs)
	sort.SliceStable(ids, func(i, j int) bool {
		return f.sources.Position(ids[i]) < f.sources.Position(ids[j])
	})

	return ids
}

func (f *Fetcher) fetchAll(ctx context.Context, ids []string, useCache bool) ([]model.Article, error) {
	// Ходим по источникам параллельно, чтобы медленный или сломанный источник не тормозил остальные.
	// Результаты кладем по индексу источника, чтобы сохранить порядок реестра.
	var (
		wg      sync.WaitGroup
		results = make([][]model.Article, len(ids))
		errs    = make([]error, len(ids))
	)

	for i, id := range ids {
		wg.Add(1)

		go func(i int, id string) {
			defer wg.Done()

			results[i], errs[i] = f.cache.Get(ctx, id, useCache)
		}(i, id)
	}

	wg.Wait()

	var failures *multierror.Error
	for _, err := range errs {
		if err != nil {
			failures = multierror.Append(failures, err)
		}
	}

	if failures != nil && len(failures.Errors) == len(ids) {
		return nil, fmt.Errorf("%w: %w", ErrAllSourcesFailed, failures.ErrorOrNil())
	}

	merged := lo.Flatten(results)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	if len(merged) > f.maxArticles {
		merged = merged[:f.maxArticles]
	}

	metrics.Aggregated(len(merged))

	return merged, nil
}

package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
)

// Больше этого из одной ленты не читаем
const maxFeedSize = 10 << 20

type Config struct {
	// Префикс прокси, к нему дописывается экранированный урл ленты. Пустой - без прокси
	ProxyURL string
	// Сколько статей брать из одной ленты
	MaxItems int
	// Стоп-слова для заголовков и категорий
	FilterKeywords []string
}

// RSSFetcher загружает ленту одного источника и нормализует ее в статьи.
type RSSFetcher struct {
	registry   *Registry
	client     *http.Client
	throttle   *Throttle
	proxyURL   string
	normalizer normalizer
	now        func() time.Time
}

func NewRSSFetcher(registry *Registry, client *http.Client, throttle *Throttle, cfg Config) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return &RSSFetcher{
		registry: registry,
		client:   client,
		throttle: throttle,
		proxyURL: cfg.ProxyURL,
		normalizer: normalizer{
			maxItems:       cfg.MaxItems,
			filterKeywords: cfg.FilterKeywords,
		},
		now: time.Now,
	}
}

// Fetch возвращает до MaxItems статей из живой ленты или *FetchError.
func (f *RSSFetcher) Fetch(ctx context.Context, sourceID string) ([]model.Article, error) {
	src, ok := f.registry.Lookup(sourceID)
	if !ok {
		return nil, &FetchError{Source: sourceID, Err: ErrUnknownSource}
	}

	target := Proxied(f.proxyURL, src.FeedURL)

	var data []byte
	err := f.throttle.Do(ctx, func() error {
		var err error
		data, err = f.download(ctx, target)
		return err
	})

	fetchedAt := f.now()

	if err != nil {
		f.registry.MarkFetched(src.ID, fetchedAt, 0)
		return nil, &FetchError{Source: src.ID, URL: src.FeedURL, Err: err}
	}

	items, err := decodeFeed(data)
	if err != nil {
		f.registry.MarkFetched(src.ID, fetchedAt, 0)
		return nil, &FetchError{Source: src.ID, URL: src.FeedURL, Err: err}
	}

	articles := f.normalizer.normalize(src, items, fetchedAt)
	f.registry.MarkFetched(src.ID, fetchedAt, len(articles))

	log.Printf("[INFO] fetched %d articles from %s", len(articles), src.ID)

	return articles, nil
}

func (f *RSSFetcher) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
}

// Proxied переписывает урл ленты через прокси, если он задан
func Proxied(proxyURL, feedURL string) string {
	if proxyURL == "" {
		return feedURL
	}

	return proxyURL + url.QueryEscape(feedURL)
}

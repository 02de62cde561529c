package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Bitcoin surges past $100K</title>
      <link>https://example.com/btc</link>
      <description><![CDATA[<p>Bitcoin <b>surges</b> &amp; rallies</p>]]></description>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
      <category>markets</category>
    </item>
    <item>
      <link>https://example.com/untitled</link>
      <description>No title here</description>
      <pubDate>not a date</pubDate>
    </item>
    <item>
      <title>Encoded only</title>
      <link>https://example.com/encoded</link>
      <content:encoded><![CDATA[<div><p>Ethereum developers ship the upgrade.</p></div>]]></content:encoded>
    </item>
  </channel>
</rss>`

var fetchedAt = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func newTestFetcher(t *testing.T, feedURL string, cfg Config) (*RSSFetcher, *Registry) {
	t.Helper()

	registry := NewRegistry([]model.Source{
		{ID: "test", Name: "Test Feed", FeedURL: feedURL, Active: true},
	})

	fetcher := NewRSSFetcher(registry, nil, NewThrottle(0), cfg)
	fetcher.now = func() time.Time { return fetchedAt }

	return fetcher, registry
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestRSSFetcherFetch(t *testing.T) {
	server := serveFeed(t, testFeed)
	fetcher, registry := newTestFetcher(t, server.URL, Config{})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, articles, 3)

	first := articles[0]
	assert.Equal(t, "test-1706774400000-0", first.ID)
	assert.Equal(t, "Bitcoin surges past $100K", first.Title)
	assert.Equal(t, "Bitcoin surges & rallies", first.Description)
	assert.Equal(t, "https://example.com/btc", first.URL)
	assert.Equal(t, "Test Feed", first.Source)
	assert.True(t, first.PublishedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, model.SentimentBullish, first.Sentiment)
	assert.Contains(t, first.Hashtags, "#CryptoNews")
	assert.NotEmpty(t, first.PostText)

	untitledArticle := articles[1]
	assert.Equal(t, "Untitled", untitledArticle.Title)
	assert.Equal(t, "No title here", untitledArticle.Description)
	assert.True(t, untitledArticle.PublishedAt.Equal(fetchedAt))

	encoded := articles[2]
	assert.Contains(t, encoded.Description, "Ethereum developers ship the upgrade")
	assert.NotContains(t, encoded.Description, "<")

	src, ok := registry.Lookup("test")
	require.True(t, ok)
	assert.Equal(t, 3, src.ArticleCount)
	assert.True(t, src.LastFetched.Equal(fetchedAt))
}

func TestRSSFetcherIDsUnique(t *testing.T) {
	server := serveFeed(t, testFeed)
	fetcher, _ := newTestFetcher(t, server.URL, Config{})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, a := range articles {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}

func TestRSSFetcherMaxItems(t *testing.T) {
	server := serveFeed(t, testFeed)
	fetcher, _ := newTestFetcher(t, server.URL, Config{MaxItems: 2})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestRSSFetcherFilterKeywords(t *testing.T) {
	server := serveFeed(t, testFeed)
	fetcher, _ := newTestFetcher(t, server.URL, Config{FilterKeywords: []string{"markets"}})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Untitled", articles[0].Title)
	assert.Equal(t, "test-1706774400000-0", articles[0].ID)
}

func TestRSSFetcherThroughProxy(t *testing.T) {
	const feedURL = "https://feeds.example.com/rss?lang=en"

	var gotURL string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Write([]byte(testFeed))
	}))
	defer proxy.Close()

	fetcher, _ := newTestFetcher(t, feedURL, Config{ProxyURL: proxy.URL + "/raw?url="})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)
	assert.Len(t, articles, 3)
	assert.Equal(t, feedURL, gotURL)
}

func TestRSSFetcherAtom(t *testing.T) {
	const atom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <title>Solana outage</title>
    <link href="https://example.com/sol"/>
    <updated>2024-01-02T10:00:00Z</updated>
    <summary>Network halted for hours</summary>
  </entry>
</feed>`

	server := serveFeed(t, atom)
	fetcher, _ := newTestFetcher(t, server.URL, Config{})

	articles, err := fetcher.Fetch(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://example.com/sol", articles[0].URL)
	assert.Equal(t, "Network halted for hours", articles[0].Description)
	assert.True(t, articles[0].PublishedAt.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))
}

func TestRSSFetcherErrors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	garbage := serveFeed(t, "definitely not a feed")

	tests := []struct {
		name string
		url  string
	}{
		{"status", notFound.URL},
		{"parse", garbage.URL},
		{"network", "http://127.0.0.1:1/feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, registry := newTestFetcher(t, tt.url, Config{})

			articles, err := fetcher.Fetch(context.Background(), "test")
			assert.Nil(t, articles)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, "test", fetchErr.Source)

			src, _ := registry.Lookup("test")
			assert.True(t, src.LastFetched.Equal(fetchedAt))
		})
	}
}

func TestRSSFetcherUnknownSource(t *testing.T) {
	fetcher, _ := newTestFetcher(t, "http://example.com", Config{})

	_, err := fetcher.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestProxied(t *testing.T) {
	assert.Equal(t, "https://a.b/feed", Proxied("", "https://a.b/feed"))
	assert.Equal(t, "https://proxy/raw?url=https%3A%2F%2Fa.b%2Ffeed", Proxied("https://proxy/raw?url=", "https://a.b/feed"))
}

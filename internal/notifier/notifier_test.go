package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/enrich"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/kovalyov-valentin/cryptoflow/internal/poster"
	"github.com/kovalyov-valentin/cryptoflow/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

type articlesStub struct {
	articles []model.Article
	err      error
}

func (s *articlesStub) FetchAll(context.Context, []string, bool) ([]model.Article, error) {
	return s.articles, s.err
}

type posterStub struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (p *posterStub) Post(_ context.Context, text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return "", p.err
	}

	p.texts = append(p.texts, text)
	return "post-" + string(rune('0'+len(p.texts))), nil
}

type summarizerStub struct {
	enabled   bool
	headlines []string
	language  string
	summary   string
}

func (s *summarizerStub) Enabled() bool { return s.enabled }

func (s *summarizerStub) Summarize(_ context.Context, headlines []string, language string) (string, error) {
	s.headlines, s.language = headlines, language
	return s.summary, nil
}

func article(id, title, url string) model.Article {
	return enrich.Apply(model.Article{ID: id, Title: title, URL: url, PublishedAt: now})
}

func newTestNotifier(articles []model.Article, p poster.Poster, s Summarizer) (*Notifier, *storage.MemoryPostedStorage, *storage.MemoryScheduleStorage) {
	posted := storage.NewMemoryPostedStorage()
	schedule := storage.NewMemoryScheduleStorage()

	n := New(&articlesStub{articles: articles}, posted, schedule, p, s, Config{})
	n.now = func() time.Time { return now }

	return n, posted, schedule
}

func TestSelectAndSendArticle(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{}
	n, posted, _ := newTestNotifier([]model.Article{
		article("a-0", "No link", ""),
		article("a-1", "Bitcoin rallies", "https://example.com/1"),
		article("a-2", "Ethereum dips", "https://example.com/2"),
	}, p, nil)

	result, err := n.SelectAndSendArticle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Posted)
	assert.Equal(t, "https://example.com/1", result.ArticleURL)
	assert.Contains(t, result.Message, "Bitcoin rallies")

	ok, err := posted.HasPosted(ctx, "https://example.com/1")
	require.NoError(t, err)
	assert.True(t, ok)

	result, err = n.SelectAndSendArticle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/2", result.ArticleURL)

	result, err = n.SelectAndSendArticle(ctx)
	require.NoError(t, err)
	assert.False(t, result.Posted)
	assert.Equal(t, "no new articles to post", result.Message)

	require.Len(t, p.texts, 2)
	assert.True(t, strings.HasPrefix(p.texts[0], "Bitcoin rallies\n\nhttps://example.com/1"))
}

func TestSelectAndSendArticleRateLimited(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{err: &poster.PostError{Kind: poster.KindRateLimited, StatusCode: 429, Err: errors.New("too many")}}
	n, posted, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin", "https://example.com/1")}, p, nil)

	result, err := n.SelectAndSendArticle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, result.Posted)

	ok, err := posted.HasPosted(ctx, "https://example.com/1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectAndSendArticleErrors(t *testing.T) {
	ctx := context.Background()
	serverErr := &poster.PostError{Kind: poster.KindServer, StatusCode: 503, Err: errors.New("unavailable")}
	n, _, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin", "https://example.com/1")}, &posterStub{err: serverErr}, nil)

	_, err := n.SelectAndSendArticle(ctx)
	assert.ErrorIs(t, err, serverErr)

	n, _, _ = newTestNotifier(nil, nil, nil)
	_, err = n.SelectAndSendArticle(ctx)
	assert.ErrorIs(t, err, poster.ErrMissingCredentials)
}

func TestSelectAndSendArticleTruncatesLongText(t *testing.T) {
	p := &posterStub{}
	a := model.Article{ID: "a-1", Title: "Bitcoin", URL: "https://example.com/1", PostText: strings.Repeat("x", 300)}
	n, _, _ := newTestNotifier([]model.Article{a}, p, nil)

	_, err := n.SelectAndSendArticle(context.Background())
	require.NoError(t, err)
	require.Len(t, p.texts, 1)
	assert.Equal(t, strings.Repeat("x", 250)+enrich.Ellipsis, p.texts[0])
}

func TestPostDigest(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{}
	s := &summarizerStub{enabled: true, summary: "Le bitcoin monte."}
	n, posted, _ := newTestNotifier([]model.Article{
		article("a-1", "Bitcoin rallies", "https://example.com/1"),
		article("a-2", "Ethereum dips", "https://example.com/2"),
	}, p, s)

	result, err := n.Post(ctx, "fr")
	require.NoError(t, err)
	assert.True(t, result.Posted)
	assert.Equal(t, "posted digest of 2 articles", result.Message)
	assert.Equal(t, []string{"Bitcoin rallies", "Ethereum dips"}, s.headlines)
	assert.Equal(t, "fr", s.language)
	require.Len(t, p.texts, 1)
	assert.Equal(t, "Le bitcoin monte.\n\n#CryptoNews", p.texts[0])

	for _, url := range []string{"https://example.com/1", "https://example.com/2"} {
		ok, err := posted.HasPosted(ctx, url)
		require.NoError(t, err)
		assert.True(t, ok, url)
	}
}

func TestPostWithoutSummarizerSendsArticle(t *testing.T) {
	p := &posterStub{}
	n, _, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin rallies", "https://example.com/1")}, p, &summarizerStub{})

	result, err := n.Post(context.Background(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/1", result.ArticleURL)
	assert.Contains(t, result.Message, "Bitcoin rallies")
}

func TestScheduleAndProcessDue(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{}
	n, posted, _ := newTestNotifier([]model.Article{
		article("a-1", "Bitcoin rallies", "https://example.com/1"),
		article("a-2", "Ethereum dips", "https://example.com/2"),
	}, p, nil)

	_, err := n.Schedule(ctx, "missing", now)
	assert.ErrorIs(t, err, ErrArticleNotFound)

	first, err := n.Schedule(ctx, "a-1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.PostScheduled, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "https://example.com/1", first.ArticleURL)

	_, err = n.Schedule(ctx, "a-2", now.Add(time.Hour))
	require.NoError(t, err)

	sent, err := n.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, p.texts, 1)
	assert.Equal(t, first.Text, p.texts[0])

	ok, err := posted.HasPosted(ctx, "https://example.com/1")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := n.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.PostPosted, all[0].Status)
	assert.Equal(t, model.PostScheduled, all[1].Status)
}

func TestProcessDueFailures(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{err: &poster.PostError{Kind: poster.KindClient, StatusCode: 403, Err: errors.New("duplicate")}}
	n, _, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin", "https://example.com/1")}, p, nil)

	_, err := n.Schedule(ctx, "a-1", time.Time{})
	require.NoError(t, err)

	sent, err := n.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	all, err := n.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.PostFailed, all[0].Status)
}

func TestProcessDueRateLimitedKeepsScheduled(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{err: &poster.PostError{Kind: poster.KindRateLimited, StatusCode: 429, Err: errors.New("slow down")}}
	n, _, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin", "https://example.com/1")}, p, nil)

	_, err := n.Schedule(ctx, "a-1", now)
	require.NoError(t, err)

	_, err = n.ProcessDue(ctx)
	require.NoError(t, err)

	all, err := n.Scheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PostScheduled, all[0].Status)
}

func TestProcessDueAlreadyPosted(t *testing.T) {
	ctx := context.Background()
	p := &posterStub{}
	n, posted, _ := newTestNotifier([]model.Article{article("a-1", "Bitcoin", "https://example.com/1")}, p, nil)

	_, err := n.Schedule(ctx, "a-1", now)
	require.NoError(t, err)
	require.NoError(t, posted.MarkPosted(ctx, "https://example.com/1"))

	sent, err := n.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, p.texts)

	all, err := n.Scheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PostPosted, all[0].Status)
}

func TestStartStopsOnCancel(t *testing.T) {
	n, _, _ := newTestNotifier(nil, &posterStub{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}

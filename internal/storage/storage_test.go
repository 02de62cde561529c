package storage

import (
	"context"
	"testing"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPostedStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPostedStorage()

	posted, err := s.HasPosted(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, posted)

	require.NoError(t, s.MarkPosted(ctx, "https://example.com/a"))
	require.NoError(t, s.MarkPosted(ctx, "https://example.com/a"))

	posted, err = s.HasPosted(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, posted)

	posted, err = s.HasPosted(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.False(t, posted)
}

func TestMemoryScheduleStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryScheduleStorage()
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	posts := []model.ScheduledPost{
		{ID: "late", ScheduledFor: now.Add(time.Hour), Status: model.PostScheduled},
		{ID: "due", ScheduledFor: now.Add(-time.Minute), Status: model.PostScheduled},
		{ID: "exact", ScheduledFor: now, Status: model.PostScheduled},
		{ID: "done", ScheduledFor: now.Add(-time.Hour), Status: model.PostPosted},
	}
	for _, post := range posts {
		require.NoError(t, s.Add(ctx, post))
	}

	due, err := s.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "due", due[0].ID)
	assert.Equal(t, "exact", due[1].ID)

	require.NoError(t, s.SetStatus(ctx, "due", model.PostFailed))
	assert.ErrorIs(t, s.SetStatus(ctx, "missing", model.PostPosted), ErrNotFound)

	due, err = s.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "exact", due[0].ID)

	all, err := s.All(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, post := range all {
		ids = append(ids, post.ID)
	}
	assert.Equal(t, []string{"done", "due", "exact", "late"}, ids)
	assert.Equal(t, model.PostFailed, all[1].Status)
}

func TestDBScheduledPostMapping(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	post := model.ScheduledPost{
		ID:           "id",
		Text:         "text",
		ScheduledFor: now,
		Status:       model.PostScheduled,
		ArticleID:    "coindesk-1-0",
		ArticleURL:   "https://example.com",
		Hashtags:     []string{"#Bitcoin", "#CryptoNews"},
		CreatedAt:    now,
	}

	got := toDBScheduledPost(post).toModel()

	assert.True(t, got.ScheduledFor.Equal(now))
	assert.Equal(t, time.UTC, got.ScheduledFor.Location())
	assert.Equal(t, post.Hashtags, got.Hashtags)
	assert.Equal(t, post.Status, got.Status)
}

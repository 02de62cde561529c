package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type MemoryScheduleStorage struct {
	mu    sync.RWMutex
	posts map[string]model.ScheduledPost
}

func NewMemoryScheduleStorage() *MemoryScheduleStorage {
	return &MemoryScheduleStorage{posts: make(map[string]model.ScheduledPost)}
}

func (s *MemoryScheduleStorage) Add(_ context.Context, post model.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[post.ID] = post
	return nil
}

// Due запланированные посты, время которых пришло, по возрастанию времени
func (s *MemoryScheduleStorage) Due(ctx context.Context, now time.Time) ([]model.ScheduledPost, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Filter(all, func(post model.ScheduledPost, _ int) bool {
		return post.Status == model.PostScheduled && !post.ScheduledFor.After(now)
	}), nil
}

func (s *MemoryScheduleStorage) SetStatus(_ context.Context, id string, status model.PostStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}

	post.Status = status
	s.posts[id] = post

	return nil
}

func (s *MemoryScheduleStorage) All(_ context.Context) ([]model.ScheduledPost, error) {
	s.mu.RLock()
	posts := lo.Values(s.posts)
	s.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].ScheduledFor.Equal(posts[j].ScheduledFor) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].ScheduledFor.Before(posts[j].ScheduledFor)
	})

	return posts, nil
}

type PostgresScheduleStorage struct {
	db *sqlx.DB
}

func NewPostgresScheduleStorage(db *sqlx.DB) *PostgresScheduleStorage {
	return &PostgresScheduleStorage{db: db}
}

func (s *PostgresScheduleStorage) Add(ctx context.Context, post model.ScheduledPost) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.NamedExecContext(
		ctx,
		`INSERT INTO scheduled_posts (id, text, scheduled_for, status, article_id, article_url, hashtags, created_at)
		VALUES (:id, :text, :scheduled_for, :status, :article_id, :article_url, :hashtags, :created_at)`,
		toDBScheduledPost(post),
	); err != nil {
		return err
	}

	return nil
}

func (s *PostgresScheduleStorage) Due(ctx context.Context, now time.Time) ([]model.ScheduledPost, error) {
	return s.selectPosts(
		ctx,
		`SELECT * FROM scheduled_posts WHERE status = $1 AND scheduled_for <= $2 ORDER BY scheduled_for, id`,
		model.PostScheduled,
		now.UTC(),
	)
}

func (s *PostgresScheduleStorage) SetStatus(ctx context.Context, id string, status model.PostStatus) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `UPDATE scheduled_posts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresScheduleStorage) All(ctx context.Context) ([]model.ScheduledPost, error) {
	return s.selectPosts(ctx, `SELECT * FROM scheduled_posts ORDER BY scheduled_for, id`)
}

func (s *PostgresScheduleStorage) selectPosts(ctx context.Context, query string, args ...any) ([]model.ScheduledPost, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var posts []dbScheduledPost
	if err := conn.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}

	return lo.Map(posts, func(post dbScheduledPost, _ int) model.ScheduledPost {
		return post.toModel()
	}), nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbScheduledPost struct {
	ID           string         `db:"id"`
	Text         string         `db:"text"`
	ScheduledFor time.Time      `db:"scheduled_for"`
	Status       string         `db:"status"`
	ArticleID    string         `db:"article_id"`
	ArticleURL   string         `db:"article_url"`
	Hashtags     pq.StringArray `db:"hashtags"`
	CreatedAt    time.Time      `db:"created_at"`
}

func toDBScheduledPost(post model.ScheduledPost) dbScheduledPost {
	return dbScheduledPost{
		ID:           post.ID,
		Text:         post.Text,
		ScheduledFor: post.ScheduledFor.UTC(),
		Status:       string(post.Status),
		ArticleID:    post.ArticleID,
		ArticleURL:   post.ArticleURL,
		Hashtags:     pq.StringArray(post.Hashtags),
		CreatedAt:    post.CreatedAt.UTC(),
	}
}

func (p dbScheduledPost) toModel() model.ScheduledPost {
	return model.ScheduledPost{
		ID:           p.ID,
		Text:         p.Text,
		ScheduledFor: p.ScheduledFor,
		Status:       model.PostStatus(p.Status),
		ArticleID:    p.ArticleID,
		ArticleURL:   p.ArticleURL,
		Hashtags:     []string(p.Hashtags),
		CreatedAt:    p.CreatedAt,
	}
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// MemoryPostedStorage ссылки уже опубликованных статей, живет до рестарта процесса
type MemoryPostedStorage struct {
	mu    sync.RWMutex
	links map[string]time.Time
}

func NewMemoryPostedStorage() *MemoryPostedStorage {
	return &MemoryPostedStorage{links: make(map[string]time.Time)}
}

func (s *MemoryPostedStorage) HasPosted(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.links[url]
	return ok, nil
}

func (s *MemoryPostedStorage) MarkPosted(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[url]; !ok {
		s.links[url] = time.Now().UTC()
	}

	return nil
}

type PostgresPostedStorage struct {
	db *sqlx.DB
}

func NewPostgresPostedStorage(db *sqlx.DB) *PostgresPostedStorage {
	return &PostgresPostedStorage{db: db}
}

func (s *PostgresPostedStorage) HasPosted(ctx context.Context, url string) (bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	var exists bool
	if err := conn.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posted_links WHERE url = $1)`, url); err != nil {
		return false, err
	}

	return exists, nil
}

func (s *PostgresPostedStorage) MarkPosted(ctx context.Context, url string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`INSERT INTO posted_links (url, posted_at) VALUES ($1, $2) ON CONFLICT (url) DO NOTHING`,
		url,
		time.Now().UTC(),
	); err != nil {
		return err
	}

	return nil
}

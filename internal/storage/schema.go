package storage

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS posted_links (
	url       TEXT PRIMARY KEY,
	posted_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scheduled_posts (
	id            TEXT PRIMARY KEY,
	text          TEXT NOT NULL,
	scheduled_for TIMESTAMPTZ NOT NULL,
	status        TEXT NOT NULL,
	article_id    TEXT NOT NULL,
	article_url   TEXT NOT NULL,
	hashtags      TEXT[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS scheduled_posts_due_idx ON scheduled_posts (status, scheduled_for);
`

// Ensure создает таблицы, если их еще нет
func Ensure(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

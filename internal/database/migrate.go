package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at startup so the server can run against a
// fresh database. saved_posts, post_likes and post_comments cascade on post
// delete: removing a post removes every reference to it, so a user's saved
// list can never point at a missing post.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              BIGSERIAL PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	password_hashed TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pet_posts (
	id          BIGSERIAL PRIMARY KEY,
	author_id   BIGINT NOT NULL REFERENCES users(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	pet_type    TEXT NOT NULL,
	breed       TEXT NOT NULL,
	image_url   TEXT,
	image_key   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS post_likes (
	post_id    BIGINT NOT NULL REFERENCES pet_posts(id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS post_comments (
	id         BIGSERIAL PRIMARY KEY,
	post_id    BIGINT NOT NULL REFERENCES pet_posts(id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS saved_posts (
	user_id    BIGINT NOT NULL REFERENCES users(id),
	post_id    BIGINT NOT NULL REFERENCES pet_posts(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, post_id)
);

CREATE INDEX IF NOT EXISTS idx_pet_posts_created ON pet_posts (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_pet_posts_author ON pet_posts (author_id);
CREATE INDEX IF NOT EXISTS idx_post_comments_post ON post_comments (post_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_saved_posts_user ON saved_posts (user_id, created_at);
`

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

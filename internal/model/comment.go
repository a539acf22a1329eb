package model

import (
	"errors"
	"time"
)

// Comment is an entry in a post's append-only comment sequence. Comments are
// never edited or removed once appended; they live and die with the post.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"-"`
	UserID    int64        `db:"user_id" json:"-"`
	Text      string       `db:"content" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	Author    *UserSummary `json:"author,omitempty"` // Populated field
}

// CreateCommentRequest is the request body for adding a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// Comment errors
var (
	ErrCommentTextRequired = errors.New("comment text is required")
)

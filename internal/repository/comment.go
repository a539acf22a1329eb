package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"petlovers/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create appends a comment to the post's sequence and refreshes the
// aggregate's updated_at in the same transaction. There is no update or
// delete path: comments are append-only and removed only by post cascade.
func (r *commentRepository) Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, content, created_at
	`
	var comment model.Comment
	err = tx.GetContext(ctx, &comment, query, postID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	touched, err := tx.ExecContext(ctx, `UPDATE pet_posts SET updated_at = NOW() WHERE id = $1`, postID)
	if err != nil {
		return nil, fmt.Errorf("touch post: %w", err)
	}
	if rows, err := touched.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if rows == 0 {
		return nil, model.ErrPostNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &comment, nil
}

// GetByPostIDs returns each post's comments with authors populated, in
// insertion order.
func (r *commentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id as "author.id", u.username as "author.username"
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.post_id, c.created_at ASC, c.id ASC
	`

	// Struct that can scan the joined author data
	type commentRow struct {
		ID             int64     `db:"id"`
		PostID         int64     `db:"post_id"`
		UserID         int64     `db:"user_id"`
		Content        string    `db:"content"`
		CreatedAt      time.Time `db:"created_at"`
		AuthorID       int64     `db:"author.id"`
		AuthorUsername string    `db:"author.username"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], model.Comment{
			ID:        row.ID,
			PostID:    row.PostID,
			UserID:    row.UserID,
			Text:      row.Content,
			CreatedAt: row.CreatedAt,
			Author: &model.UserSummary{
				ID:       row.AuthorID,
				Username: row.AuthorUsername,
			},
		})
	}

	return result, nil
}

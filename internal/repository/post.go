package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"petlovers/internal/model"
)

const postColumns = `id, author_id, title, description, pet_type, breed, image_url, image_key, created_at, updated_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post and fills in the DB-assigned fields.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO pet_posts (author_id, title, description, pet_type, breed, image_url, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + postColumns

	err := r.db.GetContext(ctx, post, query,
		post.AuthorID,
		post.Title,
		post.Description,
		post.PetType,
		post.Breed,
		post.ImageURL,
		post.ImageKey,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post row (likes and comments are populated by
// the service layer).
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM pet_posts WHERE id = $1`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// GetByIDs retrieves multiple posts and re-orders them to match the input
// order. Used for resolving saved lists, where save order matters.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `SELECT ` + postColumns + ` FROM pet_posts WHERE id = ANY($1)`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	postsMap := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		postsMap[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := postsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// List returns all posts newest-first, optionally restricted to one pet type.
func (r *postRepository) List(ctx context.Context, petType *model.PetType) ([]model.Post, error) {
	var posts []model.Post
	var err error

	if petType == nil {
		query := `SELECT ` + postColumns + ` FROM pet_posts ORDER BY created_at DESC, id DESC`
		err = r.db.SelectContext(ctx, &posts, query)
	} else {
		query := `SELECT ` + postColumns + ` FROM pet_posts WHERE pet_type = $1 ORDER BY created_at DESC, id DESC`
		err = r.db.SelectContext(ctx, &posts, query, *petType)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns one author's posts newest-first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM pet_posts WHERE author_id = $1 ORDER BY created_at DESC, id DESC`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// Update applies a partial update via COALESCE; omitted fields keep their
// prior value. author_id is never part of the SET list.
func (r *postRepository) Update(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error) {
	query := `
		UPDATE pet_posts SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			pet_type = COALESCE($4, pet_type),
			breed = COALESCE($5, breed),
			image_url = COALESCE($6, image_url),
			image_key = COALESCE($7, image_key),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postColumns

	var post model.Post
	err := r.db.GetContext(ctx, &post, query,
		postID,
		fields.Title,
		fields.Description,
		fields.PetType,
		fields.Breed,
		fields.ImageURL,
		fields.ImageKey,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &post, nil
}

// Delete removes a post permanently. Likes, comments and saved references go
// with it via ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pet_posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM pet_posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// ToggleLike flips userID's membership in the post's like set inside one
// transaction: delete first, insert only when nothing was deleted. The
// (post_id, user_id) primary key plus ON CONFLICT makes concurrent toggles
// from the same user converge to valid set state instead of double-inserting.
// The aggregate's updated_at is refreshed in the same transaction; touching it
// first also proves the post exists, so a like on a missing post surfaces as
// ErrPostNotFound rather than a foreign-key violation on the insert.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	touched, err := tx.ExecContext(ctx, `UPDATE pet_posts SET updated_at = NOW() WHERE id = $1`, postID)
	if err != nil {
		return false, fmt.Errorf("touch post: %w", err)
	}
	if rows, err := touched.RowsAffected(); err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	} else if rows == 0 {
		return false, model.ErrPostNotFound
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	liked := false
	if rows == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`, postID, userID)
		if err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, nil
}

// GetLikes returns the like sets for the given posts in like order.
func (r *postRepository) GetLikes(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id, user_id FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY created_at ASC, user_id ASC
	`

	type likeRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var rows []likeRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get likes: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.UserID)
	}
	return result, nil
}

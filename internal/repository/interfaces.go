package repository

import (
	"context"

	"petlovers/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// GetSummaries batch-resolves identities to their display form.
	GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
	// ToggleSave atomically flips postID's membership in the user's saved
	// set and returns the resulting state.
	ToggleSave(ctx context.Context, userID, postID int64) (saved bool, err error)
	// Unsave removes postID from the saved set; ErrPostNotSaved if absent.
	Unsave(ctx context.Context, userID, postID int64) error
	// GetSavedPostIDs returns the saved set in save order.
	GetSavedPostIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDs returns posts in the order of the given ids.
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	// List returns all posts newest-first, optionally filtered by pet type.
	List(ctx context.Context, petType *model.PetType) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error)
	// Update applies a partial update; nil fields keep their prior value.
	// updated_at is refreshed unconditionally.
	Update(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error)
	Delete(ctx context.Context, postID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)
	// ToggleLike atomically flips userID's membership in the post's like set
	// and returns whether the user likes the post afterwards.
	ToggleLike(ctx context.Context, postID, userID int64) (liked bool, err error)
	// GetLikes returns the like sets for the given posts, in like order.
	GetLikes(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
}

type CommentRepository interface {
	// Create appends a comment to the post's sequence.
	Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error)
	// GetByPostIDs returns each post's comments with authors populated, in
	// insertion order.
	GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

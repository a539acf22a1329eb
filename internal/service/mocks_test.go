package service

import (
	"context"
	"fmt"

	"petlovers/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Unit tests never hit a real database. The services depend on the repository
// INTERFACES, so we swap in mocks whose behavior each test controls through
// function fields. Unset fields fall back to benign defaults (empty sets,
// "user<N>" summaries) so tests only wire what they assert on.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	getSummariesFn     func(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
	toggleSaveFn       func(ctx context.Context, userID, postID int64) (bool, error)
	unsaveFn           func(ctx context.Context, userID, postID int64) error
	getSavedPostIDsFn  func(ctx context.Context, userID int64) ([]int64, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	result := make(map[int64]model.UserSummary, len(ids))
	for _, id := range ids {
		result[id] = model.UserSummary{ID: id, Username: fmt.Sprintf("user%d", id)}
	}
	return result, nil
}

func (m *mockUserRepository) ToggleSave(ctx context.Context, userID, postID int64) (bool, error) {
	if m.toggleSaveFn != nil {
		return m.toggleSaveFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockUserRepository) Unsave(ctx context.Context, userID, postID int64) error {
	if m.unsaveFn != nil {
		return m.unsaveFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockUserRepository) GetSavedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getSavedPostIDsFn != nil {
		return m.getSavedPostIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

type mockPostRepository struct {
	createFn       func(ctx context.Context, post *model.Post) error
	getByIDFn      func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn     func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	listFn         func(ctx context.Context, petType *model.PetType) ([]model.Post, error)
	listByAuthorFn func(ctx context.Context, authorID int64) ([]model.Post, error)
	updateFn       func(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error)
	deleteFn       func(ctx context.Context, postID int64) error
	existsFn       func(ctx context.Context, postID int64) (bool, error)
	toggleLikeFn   func(ctx context.Context, postID, userID int64) (bool, error)
	getLikesFn     func(ctx context.Context, postIDs []int64) (map[int64][]int64, error)

	deleteCalls []int64
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) List(ctx context.Context, petType *model.PetType) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, petType)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) Update(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, postID, fields)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	m.deleteCalls = append(m.deleteCalls, postID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) GetLikes(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	if m.getLikesFn != nil {
		return m.getLikesFn(ctx, postIDs)
	}
	return map[int64][]int64{}, nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, postID, userID int64, text string) (*model.Comment, error)
	getByPostIDsFn func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, text)
	}
	return &model.Comment{PostID: postID, UserID: userID, Text: text}, nil
}

func (m *mockCommentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if m.getByPostIDsFn != nil {
		return m.getByPostIDsFn(ctx, postIDs)
	}
	return map[int64][]model.Comment{}, nil
}

type mockBlobDeleter struct {
	deleteFn    func(ctx context.Context, key string) error
	deleteCalls []string
}

func (m *mockBlobDeleter) DeleteObject(ctx context.Context, key string) error {
	m.deleteCalls = append(m.deleteCalls, key)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

// newTestPostService wires a post service with the given mocks and no
// listing cache.
func newTestPostService(posts *mockPostRepository, users *mockUserRepository, comments *mockCommentRepository, blob *mockBlobDeleter) *PostService {
	return NewPostService(posts, users, comments, blob, nil)
}

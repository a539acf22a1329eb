package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"petlovers/internal/model"
)

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "missing title",
			req:     model.CreatePostRequest{Description: "d", PetType: model.PetTypeDog, Breed: "Corgi"},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "missing description",
			req:     model.CreatePostRequest{Title: "t", PetType: model.PetTypeDog, Breed: "Corgi"},
			wantErr: model.ErrDescRequired,
		},
		{
			name:    "invalid pet type",
			req:     model.CreatePostRequest{Title: "t", Description: "d", PetType: "Hamster", Breed: "Syrian"},
			wantErr: model.ErrInvalidPetType,
		},
		{
			name:    "missing breed",
			req:     model.CreatePostRequest{Title: "t", Description: "d", PetType: model.PetTypeCat},
			wantErr: model.ErrBreedRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &mockPostRepository{
				createFn: func(ctx context.Context, post *model.Post) error {
					t.Fatal("Create should not reach the repository on invalid input")
					return nil
				},
			}
			svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, &mockBlobDeleter{})

			_, err := svc.Create(context.Background(), 1, tt.req, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPostService_Create_Success(t *testing.T) {
	posts := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 42
			post.CreatedAt = time.Now()
			post.UpdatedAt = post.CreatedAt
			return nil
		},
		getLikesFn: func(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
			return map[int64][]int64{}, nil
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, &mockBlobDeleter{})

	image := &model.UploadResult{URL: "https://cdn.example.com/posts/abc.jpg", Key: "posts/abc.jpg"}
	post, err := svc.Create(context.Background(), 7, model.CreatePostRequest{
		Title:       "Meet Biscuit",
		Description: "Three months old and already ruling the house",
		PetType:     model.PetTypeDog,
		Breed:       "Corgi",
	}, image)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if post.ID != 42 {
		t.Errorf("expected id 42, got %d", post.ID)
	}
	if post.AuthorID != 7 {
		t.Errorf("expected author id 7, got %d", post.AuthorID)
	}
	if post.Author == nil || post.Author.ID != 7 || post.Author.Username != "user7" {
		t.Errorf("expected populated author user7, got %+v", post.Author)
	}
	if post.ImageURL == nil || *post.ImageURL != image.URL {
		t.Errorf("expected image url %q, got %v", image.URL, post.ImageURL)
	}
	if post.Likes == nil || len(post.Likes) != 0 {
		t.Errorf("expected empty like set, got %v", post.Likes)
	}
	if post.Comments == nil || len(post.Comments) != 0 {
		t.Errorf("expected empty comment list, got %v", post.Comments)
	}
}

func TestPostService_Create_FailedInsertDiscardsImage(t *testing.T) {
	posts := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			return fmt.Errorf("connection reset")
		},
	}
	blob := &mockBlobDeleter{}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, blob)

	image := &model.UploadResult{URL: "https://cdn.example.com/posts/abc.jpg", Key: "posts/abc.jpg"}
	_, err := svc.Create(context.Background(), 7, model.CreatePostRequest{
		Title:       "Meet Biscuit",
		Description: "Three months old",
		PetType:     model.PetTypeDog,
		Breed:       "Corgi",
	}, image)
	if err == nil {
		t.Fatal("expected error from failed insert")
	}
	if len(blob.deleteCalls) != 1 || blob.deleteCalls[0] != image.Key {
		t.Errorf("expected orphaned blob %q deleted, got %v", image.Key, blob.deleteCalls)
	}
}

func TestPostService_Update_OwnershipAndNotFound(t *testing.T) {
	owned := &model.Post{ID: 1, AuthorID: 10, Title: "original"}

	posts := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			if postID == 1 {
				copied := *owned
				return &copied, nil
			}
			return nil, model.ErrPostNotFound
		},
		updateFn: func(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error) {
			updated := *owned
			if fields.Title != nil {
				updated.Title = *fields.Title
			}
			return &updated, nil
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, &mockBlobDeleter{})

	newTitle := "renamed"
	fields := model.UpdatePostFields{Title: &newTitle}

	// Someone else's edit is rejected before touching the row.
	if _, err := svc.Update(context.Background(), 1, 99, fields); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("expected ErrNotPostOwner for non-owner, got %v", err)
	}

	// Missing post.
	if _, err := svc.Update(context.Background(), 404, 10, fields); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}

	// The owner succeeds.
	post, err := svc.Update(context.Background(), 1, 10, fields)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if post.Title != "renamed" {
		t.Errorf("expected title %q, got %q", "renamed", post.Title)
	}
}

func TestPostService_Update_ReplacedImageDeletedBestEffort(t *testing.T) {
	oldKey := "posts/old.jpg"
	newKey := "posts/new.jpg"
	newURL := "https://cdn.example.com/posts/new.jpg"

	posts := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: 1, AuthorID: 10, ImageKey: &oldKey}, nil
		},
		updateFn: func(ctx context.Context, postID int64, fields model.UpdatePostFields) (*model.Post, error) {
			return &model.Post{ID: 1, AuthorID: 10, ImageURL: fields.ImageURL, ImageKey: fields.ImageKey}, nil
		},
	}
	blob := &mockBlobDeleter{
		deleteFn: func(ctx context.Context, key string) error {
			return fmt.Errorf("bucket unreachable")
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, blob)

	post, err := svc.Update(context.Background(), 1, 10, model.UpdatePostFields{ImageURL: &newURL, ImageKey: &newKey})
	if err != nil {
		t.Fatalf("update should survive a failed blob delete: %v", err)
	}
	if post.ImageKey == nil || *post.ImageKey != newKey {
		t.Errorf("expected image key %q, got %v", newKey, post.ImageKey)
	}
	if len(blob.deleteCalls) != 1 || blob.deleteCalls[0] != oldKey {
		t.Errorf("expected one delete of %q, got %v", oldKey, blob.deleteCalls)
	}
}

func TestPostService_Update_RejectedEditDiscardsNewImage(t *testing.T) {
	posts := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			if postID == 1 {
				return &model.Post{ID: 1, AuthorID: 10}, nil
			}
			return nil, model.ErrPostNotFound
		},
	}
	blob := &mockBlobDeleter{}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, blob)
	ctx := context.Background()

	newKey := "posts/new.jpg"
	newURL := "https://cdn.example.com/posts/new.jpg"
	fields := model.UpdatePostFields{ImageURL: &newURL, ImageKey: &newKey}

	// A non-owner's edit is rejected and must not leave its blob behind.
	if _, err := svc.Update(ctx, 1, 99, fields); !errors.Is(err, model.ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner, got %v", err)
	}
	if len(blob.deleteCalls) != 1 || blob.deleteCalls[0] != newKey {
		t.Errorf("expected orphaned blob %q deleted, got %v", newKey, blob.deleteCalls)
	}

	// Same for an edit against a missing post.
	if _, err := svc.Update(ctx, 404, 10, fields); !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if len(blob.deleteCalls) != 2 || blob.deleteCalls[1] != newKey {
		t.Errorf("expected second delete of %q, got %v", newKey, blob.deleteCalls)
	}
}

func TestPostService_Delete(t *testing.T) {
	imageKey := "posts/gone.jpg"
	posts := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: 5, AuthorID: 10, ImageKey: &imageKey}, nil
		},
	}
	blob := &mockBlobDeleter{
		deleteFn: func(ctx context.Context, key string) error {
			return fmt.Errorf("bucket unreachable")
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, blob)

	if err := svc.Delete(context.Background(), 5, 99); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("expected ErrNotPostOwner for non-owner, got %v", err)
	}
	if len(posts.deleteCalls) != 0 {
		t.Errorf("non-owner delete must not reach the repository, got %v", posts.deleteCalls)
	}

	if err := svc.Delete(context.Background(), 5, 10); err != nil {
		t.Fatalf("owner delete should survive a failed blob delete: %v", err)
	}
	if len(posts.deleteCalls) != 1 || posts.deleteCalls[0] != 5 {
		t.Errorf("expected repository delete of post 5, got %v", posts.deleteCalls)
	}
	if len(blob.deleteCalls) != 1 || blob.deleteCalls[0] != imageKey {
		t.Errorf("expected blob delete of %q, got %v", imageKey, blob.deleteCalls)
	}
}

func TestPostService_ToggleLike_Roundtrip(t *testing.T) {
	// Stateful like set so the service sees real toggle semantics.
	liked := map[int64]bool{}
	posts := &mockPostRepository{
		toggleLikeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			if postID != 1 {
				return false, model.ErrPostNotFound
			}
			liked[userID] = !liked[userID]
			return liked[userID], nil
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: 1, AuthorID: 2}, nil
		},
		getLikesFn: func(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
			ids := []int64{}
			for userID, on := range liked {
				if on {
					ids = append(ids, userID)
				}
			}
			return map[int64][]int64{1: ids}, nil
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, &mockBlobDeleter{})
	ctx := context.Background()

	post, err := svc.ToggleLike(ctx, 1, 7)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if len(post.Likes) != 1 || post.Likes[0] != 7 {
		t.Errorf("expected like set [7], got %v", post.Likes)
	}

	// Second actor lands alongside the first.
	post, err = svc.ToggleLike(ctx, 1, 8)
	if err != nil {
		t.Fatalf("second actor toggle failed: %v", err)
	}
	if len(post.Likes) != 2 {
		t.Errorf("expected two likes, got %v", post.Likes)
	}

	// Toggling again removes only that actor's like.
	post, err = svc.ToggleLike(ctx, 1, 7)
	if err != nil {
		t.Fatalf("untoggle failed: %v", err)
	}
	if len(post.Likes) != 1 || post.Likes[0] != 8 {
		t.Errorf("expected like set [8], got %v", post.Likes)
	}

	if _, err := svc.ToggleLike(ctx, 404, 7); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_AddComment(t *testing.T) {
	var stored []model.Comment
	comments := &mockCommentRepository{
		createFn: func(ctx context.Context, postID, userID int64, text string) (*model.Comment, error) {
			c := model.Comment{
				ID:        int64(len(stored) + 1),
				PostID:    postID,
				UserID:    userID,
				Text:      text,
				CreatedAt: time.Now(),
			}
			stored = append(stored, c)
			return &c, nil
		},
		getByPostIDsFn: func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
			return map[int64][]model.Comment{1: stored}, nil
		},
	}
	posts := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return postID == 1, nil
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: 1, AuthorID: 2}, nil
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, comments, &mockBlobDeleter{})
	ctx := context.Background()

	if _, err := svc.AddComment(ctx, 1, 7, "   "); !errors.Is(err, model.ErrCommentTextRequired) {
		t.Errorf("expected ErrCommentTextRequired for blank text, got %v", err)
	}
	if _, err := svc.AddComment(ctx, 404, 7, "hello"); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}

	if _, err := svc.AddComment(ctx, 1, 7, "So cute!"); err != nil {
		t.Fatalf("first comment failed: %v", err)
	}
	post, err := svc.AddComment(ctx, 1, 8, "What breed?")
	if err != nil {
		t.Fatalf("second comment failed: %v", err)
	}

	// Comments accumulate in insertion order; nothing is replaced.
	if len(post.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(post.Comments))
	}
	if post.Comments[0].Text != "So cute!" || post.Comments[1].Text != "What breed?" {
		t.Errorf("comments out of order: %+v", post.Comments)
	}
	if post.Comments[0].UserID != 7 || post.Comments[1].UserID != 8 {
		t.Errorf("comment authorship wrong: %+v", post.Comments)
	}
}

func TestPostService_ToggleSave(t *testing.T) {
	saved := false
	users := &mockUserRepository{
		toggleSaveFn: func(ctx context.Context, userID, postID int64) (bool, error) {
			saved = !saved
			return saved, nil
		},
	}
	posts := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return postID == 1, nil
		},
	}
	svc := newTestPostService(posts, users, &mockCommentRepository{}, &mockBlobDeleter{})
	ctx := context.Background()

	if _, err := svc.ToggleSave(ctx, 7, 404); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound for missing post, got %v", err)
	}

	result, err := svc.ToggleSave(ctx, 7, 1)
	if err != nil {
		t.Fatalf("toggle save failed: %v", err)
	}
	if !result.Saved {
		t.Error("expected saved=true after first toggle")
	}

	result, err = svc.ToggleSave(ctx, 7, 1)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if result.Saved {
		t.Error("expected saved=false after second toggle")
	}
}

func TestPostService_Unsave_NotSaved(t *testing.T) {
	users := &mockUserRepository{
		unsaveFn: func(ctx context.Context, userID, postID int64) error {
			return model.ErrPostNotSaved
		},
	}
	svc := newTestPostService(&mockPostRepository{}, users, &mockCommentRepository{}, &mockBlobDeleter{})

	if err := svc.Unsave(context.Background(), 7, 1); !errors.Is(err, model.ErrPostNotSaved) {
		t.Errorf("expected ErrPostNotSaved, got %v", err)
	}
}

func TestPostService_List_FilterPassedThrough(t *testing.T) {
	var gotFilter *model.PetType
	posts := &mockPostRepository{
		listFn: func(ctx context.Context, petType *model.PetType) ([]model.Post, error) {
			gotFilter = petType
			return []model.Post{{ID: 2, AuthorID: 1, PetType: model.PetTypeCat}}, nil
		},
	}
	svc := newTestPostService(posts, &mockUserRepository{}, &mockCommentRepository{}, &mockBlobDeleter{})

	cat := model.PetTypeCat
	result, err := svc.List(context.Background(), &cat)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotFilter == nil || *gotFilter != model.PetTypeCat {
		t.Errorf("expected Cat filter to reach the repository, got %v", gotFilter)
	}
	if len(result) != 1 || result[0].Author == nil || result[0].Author.Username != "user1" {
		t.Errorf("expected one populated post, got %+v", result)
	}
}

func TestPostService_ListSaved_PreservesSaveOrder(t *testing.T) {
	users := &mockUserRepository{
		getSavedPostIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{3, 1}, nil
		},
	}
	posts := &mockPostRepository{
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			result := make([]model.Post, 0, len(postIDs))
			for _, id := range postIDs {
				result = append(result, model.Post{ID: id, AuthorID: 1})
			}
			return result, nil
		},
	}
	svc := newTestPostService(posts, users, &mockCommentRepository{}, &mockBlobDeleter{})

	result, err := svc.ListSaved(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListSaved failed: %v", err)
	}
	if len(result) != 2 || result[0].ID != 3 || result[1].ID != 1 {
		t.Errorf("expected posts in save order [3 1], got %+v", result)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"petlovers/internal/cache"
	"petlovers/internal/model"
	"petlovers/internal/repository"
)

// BlobDeleter is the slice of the blob store the post service needs for
// cleanup. Deletions are best-effort: a failure is logged and never rolls
// back the aggregate mutation that triggered it.
type BlobDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// PostService implements the post aggregate lifecycle: create/update/delete
// with ownership checks, like and save toggles, append-only comments, and
// populated listings.
type PostService struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	blob        BlobDeleter
	listCache   cache.PostListCache
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	blob BlobDeleter,
	listCache cache.PostListCache,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		blob:        blob,
		listCache:   listCache,
	}
}

// Create validates and persists a new post. The image, if any, has already
// been validated and stored by the blob-store collaborator; only its
// URL/key strings arrive here.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.CreatePostRequest, image *model.UploadResult) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		if image != nil {
			s.discardImage(ctx, image.Key)
		}
		return nil, err
	}

	post := &model.Post{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		PetType:     req.PetType,
		Breed:       req.Breed,
	}
	if image != nil {
		post.ImageURL = &image.URL
		post.ImageKey = &image.Key
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if image != nil {
			s.discardImage(ctx, image.Key)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.invalidateListCache(ctx)

	if err := s.populate(ctx, postSlice(post)); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns the populated post; public read, no authorization.
func (s *PostService) Get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, postSlice(post)); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns all posts newest-first, optionally filtered to one pet type,
// with authors, likes and comments populated. Served from the listing cache
// when warm.
func (s *PostService) List(ctx context.Context, petType *model.PetType) ([]model.Post, error) {
	if s.listCache != nil {
		cached, found, err := s.listCache.Get(ctx, petType)
		if err != nil {
			log.Printf("[PostService] List cache read failed: %v", err)
		} else if found {
			return cached, nil
		}
	}

	posts, err := s.postRepo.List(ctx, petType)
	if err != nil {
		return nil, err
	}
	if err := s.populateAll(ctx, posts); err != nil {
		return nil, err
	}

	if s.listCache != nil {
		if err := s.listCache.Set(ctx, petType, posts); err != nil {
			log.Printf("[PostService] List cache write failed: %v", err)
		}
	}

	return posts, nil
}

// ListByAuthor returns one author's posts newest-first, populated.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.populateAll(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListSaved resolves the user's saved references into populated posts, in
// save order.
func (s *PostService) ListSaved(ctx context.Context, userID int64) ([]model.Post, error) {
	ids, err := s.userRepo.GetSavedPostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.populateAll(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Update applies a partial update after the ownership check. A replaced
// image's old blob is deleted best-effort; a rejected edit's new blob is
// discarded so it never outlives the request that uploaded it.
func (s *PostService) Update(ctx context.Context, postID, actorID int64, fields model.UpdatePostFields) (*model.Post, error) {
	if fields.PetType != nil && !fields.PetType.Valid() {
		s.discardNewImage(ctx, fields)
		return nil, model.ErrInvalidPetType
	}

	existing, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		s.discardNewImage(ctx, fields)
		return nil, err
	}
	if existing.AuthorID != actorID {
		s.discardNewImage(ctx, fields)
		return nil, model.ErrNotPostOwner
	}

	post, err := s.postRepo.Update(ctx, postID, fields)
	if err != nil {
		s.discardNewImage(ctx, fields)
		return nil, err
	}

	// New image replaces the old one; the stale blob is cleanup, not part of
	// the edit.
	if fields.ImageKey != nil && existing.ImageKey != nil && *existing.ImageKey != *fields.ImageKey {
		if err := s.blob.DeleteObject(ctx, *existing.ImageKey); err != nil {
			log.Printf("[PostService] Failed to delete replaced image: post=%d key=%s err=%v", postID, *existing.ImageKey, err)
		}
	}

	s.invalidateListCache(ctx)

	if err := s.populate(ctx, postSlice(post)); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post permanently after the ownership check. Saved
// references, likes and comments cascade away with it; the image blob is
// deleted best-effort.
func (s *PostService) Delete(ctx context.Context, postID, actorID int64) error {
	existing, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing.AuthorID != actorID {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if existing.ImageKey != nil {
		if err := s.blob.DeleteObject(ctx, *existing.ImageKey); err != nil {
			log.Printf("[PostService] Failed to delete image: post=%d key=%s err=%v", postID, *existing.ImageKey, err)
		}
	}

	s.invalidateListCache(ctx)

	log.Printf("[PostService] User %d deleted post %d", actorID, postID)
	return nil
}

// ToggleLike flips the actor's membership in the post's like set and returns
// the populated post. Any authenticated identity may like any post,
// including their own.
func (s *PostService) ToggleLike(ctx context.Context, postID, actorID int64) (*model.Post, error) {
	liked, err := s.postRepo.ToggleLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	log.Printf("[PostService] User %d toggled like on post %d: liked=%t", actorID, postID, liked)
	return s.Get(ctx, postID)
}

// AddComment appends a comment to the post and returns the populated post.
// No ownership restriction on who may comment.
func (s *PostService) AddComment(ctx context.Context, postID, actorID int64, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrCommentTextRequired
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	if _, err := s.commentRepo.Create(ctx, postID, actorID, text); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	log.Printf("[PostService] User %d commented on post %d", actorID, postID)
	return s.Get(ctx, postID)
}

// ToggleSave flips the post's membership in the actor's saved set and
// returns the resulting state so the caller needs no second fetch.
func (s *PostService) ToggleSave(ctx context.Context, actorID, postID int64) (*model.SaveResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	saved, err := s.userRepo.ToggleSave(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	return &model.SaveResult{Saved: saved}, nil
}

// Unsave removes the post from the actor's saved set; ErrPostNotSaved when
// it was not there.
func (s *PostService) Unsave(ctx context.Context, actorID, postID int64) error {
	return s.userRepo.Unsave(ctx, actorID, postID)
}

// populateAll populates a slice in place.
func (s *PostService) populateAll(ctx context.Context, posts []model.Post) error {
	refs := make([]*model.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	return s.populate(ctx, refs)
}

// populate attaches author display forms, like sets and comment sequences to
// the given posts. Missing collections come back as empty, never null.
func (s *PostService) populate(ctx context.Context, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	authorIDs := make([]int64, 0, len(posts))
	seen := make(map[int64]bool)
	for i, p := range posts {
		postIDs[i] = p.ID
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := s.userRepo.GetSummaries(ctx, authorIDs)
	if err != nil {
		return fmt.Errorf("populate authors: %w", err)
	}

	likes, err := s.postRepo.GetLikes(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("populate likes: %w", err)
	}

	comments, err := s.commentRepo.GetByPostIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("populate comments: %w", err)
	}

	for _, p := range posts {
		if a, ok := authors[p.AuthorID]; ok {
			author := a
			p.Author = &author
		}
		p.Likes = likes[p.ID]
		if p.Likes == nil {
			p.Likes = []int64{}
		}
		p.Comments = comments[p.ID]
		if p.Comments == nil {
			p.Comments = []model.Comment{}
		}
	}

	return nil
}

// discardImage best-effort deletes a blob that never became referenced by a
// stored post.
func (s *PostService) discardImage(ctx context.Context, key string) {
	if err := s.blob.DeleteObject(ctx, key); err != nil {
		log.Printf("[PostService] Failed to delete unreferenced image: key=%s err=%v", key, err)
	}
}

// discardNewImage drops the replacement blob of an update that did not go
// through. Only called before the row is written, so the key is never
// referenced by any post.
func (s *PostService) discardNewImage(ctx context.Context, fields model.UpdatePostFields) {
	if fields.ImageKey == nil {
		return
	}
	s.discardImage(ctx, *fields.ImageKey)
}

// invalidateListCache drops the listing cache after a mutation; best-effort.
func (s *PostService) invalidateListCache(ctx context.Context) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.Invalidate(ctx); err != nil {
		log.Printf("[PostService] List cache invalidation failed: %v", err)
	}
}

func postSlice(p *model.Post) []*model.Post {
	return []*model.Post{p}
}

package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"petlovers/internal/httputil"
	"petlovers/internal/model"
	"petlovers/internal/service"
	"petlovers/internal/transport/http/middleware"
)

type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
}

func NewPostHandler(postService *service.PostService, mediaService *service.MediaService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
	}
}

// List handles GET /pet-posts?petType=
// Public listing, newest first, optionally filtered to one pet type.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	var petType *model.PetType
	if t := r.URL.Query().Get("petType"); t != "" && t != "all" {
		pt := model.PetType(t)
		if !pt.Valid() {
			httputil.WriteBadRequest(w, "Invalid pet type. Allowed: Dog, Cat, Bird, Other")
			return
		}
		petType = &pt
	}

	posts, err := h.postService.List(r.Context(), petType)
	if err != nil {
		log.Printf("[ERROR] List posts handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// GetByID handles GET /pet-posts/{id}
// Public read of a single populated post.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// ListByUser handles GET /pet-posts/user/{userId}
// Any authenticated identity may view another's authored posts.
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userId")
	if !ok {
		return
	}

	posts, err := h.postService.ListByAuthor(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] List user posts handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get user posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// ListSaved handles GET /pet-posts/saved
// Returns the caller's saved posts in save order.
func (h *PostHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	posts, err := h.postService.ListSaved(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] List saved posts handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get saved posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Create handles POST /pet-posts (multipart: title, description, petType,
// breed, image?). Field validation runs before the image ever reaches the
// blob store.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	req := model.CreatePostRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		PetType:     model.PetType(r.FormValue("petType")),
		Breed:       strings.TrimSpace(r.FormValue("breed")),
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, "Please fill in all required fields (title, description, petType, breed)")
		return
	}

	image, ok := h.uploadImage(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req, image)
	if err != nil {
		log.Printf("[ERROR] Create post handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Update handles PUT /pet-posts/{id} (multipart, all fields optional).
// Owner-only partial update; a supplied image replaces the old one.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	// Empty form values mean "not supplied"; only present fields overwrite.
	var fields model.UpdatePostFields
	if v := strings.TrimSpace(r.FormValue("title")); v != "" {
		fields.Title = &v
	}
	if v := strings.TrimSpace(r.FormValue("description")); v != "" {
		fields.Description = &v
	}
	if v := r.FormValue("petType"); v != "" {
		pt := model.PetType(v)
		if !pt.Valid() {
			httputil.WriteBadRequest(w, "Invalid pet type. Allowed: Dog, Cat, Bird, Other")
			return
		}
		fields.PetType = &pt
	}
	if v := strings.TrimSpace(r.FormValue("breed")); v != "" {
		fields.Breed = &v
	}

	image, ok := h.uploadImage(w, r)
	if !ok {
		return
	}
	if image != nil {
		fields.ImageURL = &image.URL
		fields.ImageKey = &image.Key
	}

	post, err := h.postService.Update(r.Context(), postID, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "Not authorized to edit this post")
		case errors.Is(err, model.ErrInvalidPetType):
			httputil.WriteBadRequest(w, "Invalid pet type. Allowed: Dog, Cat, Bird, Other")
		default:
			log.Printf("[ERROR] Update post handler: user=%d post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /pet-posts/{id}
// Owner-only permanent delete.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	err := h.postService.Delete(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "Not authorized to delete this post")
		default:
			log.Printf("[ERROR] Delete post handler: user=%d post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// ToggleLike handles POST /pet-posts/{id}/like
// Flips like membership and returns the populated post.
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	post, err := h.postService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Toggle like handler: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to like post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// AddComment handles POST /pet-posts/{id}/comments
// Appends a comment and returns the populated post.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.AddComment(r.Context(), postID, userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentTextRequired):
			httputil.WriteBadRequest(w, "Comment text is required")
		default:
			log.Printf("[ERROR] Add comment handler: user=%d post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to add comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// ToggleSave handles POST /pet-posts/{id}/save
// Flips saved membership on the caller's identity; returns {saved: bool}.
func (h *PostHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.postService.ToggleSave(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Toggle save handler: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to save post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Unsave handles DELETE /pet-posts/unsave/{id}
// Removes the post from the caller's saved list; 404 when it was not saved.
func (h *PostHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	err := h.postService.Unsave(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotSaved) {
			httputil.WriteNotFound(w, "Post not found in saved list")
			return
		}
		log.Printf("[ERROR] Unsave handler: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to unsave post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post unsaved successfully",
	})
}

// uploadImage pulls the optional "image" part out of the form and stores it
// through the blob-store collaborator. Returns (nil, true) when no image was
// supplied; on failure it writes the error response and returns (nil, false).
func (h *PostHandler) uploadImage(w http.ResponseWriter, r *http.Request) (*model.UploadResult, bool) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, true
	}
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return nil, false
	}
	defer file.Close()

	upload, err := h.mediaService.UploadPostImage(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Only image files are allowed")
		default:
			log.Printf("[ERROR] Image upload: err=%v", err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return nil, false
	}

	return upload, true
}

// parseMultipart enforces the size cap and parses the form; writes the error
// response on failure.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return false
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
			return false
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return false
	}
	return true
}

// parseIDParam parses a numeric chi URL parameter; writes 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

package model

import (
	"errors"
	"time"
)

// PetType is the closed set of pet categories a post can be filed under.
type PetType string

const (
	PetTypeDog   PetType = "Dog"
	PetTypeCat   PetType = "Cat"
	PetTypeBird  PetType = "Bird"
	PetTypeOther PetType = "Other"
)

// Valid reports whether t is a member of the closed pet-type set.
func (t PetType) Valid() bool {
	switch t {
	case PetTypeDog, PetTypeCat, PetTypeBird, PetTypeOther:
		return true
	}
	return false
}

// Post represents a pet post aggregate: the post row plus its like set and
// comment sequence. Author is set at creation and never reassigned.
type Post struct {
	ID          int64     `db:"id" json:"id"`
	AuthorID    int64     `db:"author_id" json:"-"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PetType     PetType   `db:"pet_type" json:"petType"`
	Breed       string    `db:"breed" json:"breed"`
	ImageURL    *string   `db:"image_url" json:"imageUrl,omitempty"`
	ImageKey    *string   `db:"image_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Populated fields (not columns on pet_posts)
	Author   *UserSummary `json:"author,omitempty"`
	Likes    []int64      `json:"likes"`
	Comments []Comment    `json:"comments"`
}

// CreatePostRequest carries the text fields of a new post. The image travels
// separately as multipart bytes.
type CreatePostRequest struct {
	Title       string
	Description string
	PetType     PetType
	Breed       string
}

// UpdatePostFields is a partial update: nil fields keep their prior value.
type UpdatePostFields struct {
	Title       *string
	Description *string
	PetType     *PetType
	Breed       *string
	ImageURL    *string
	ImageKey    *string
}

// SaveResult reports the membership state after a save toggle.
type SaveResult struct {
	Saved bool `json:"saved"`
}

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrTitleRequired  = errors.New("title is required")
	ErrDescRequired   = errors.New("description is required")
	ErrBreedRequired  = errors.New("breed is required")
	ErrInvalidPetType = errors.New("invalid pet type")
	ErrPostNotSaved   = errors.New("post not in saved list")
)

// Validate checks the required fields of a create request.
func (r CreatePostRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	if r.Description == "" {
		return ErrDescRequired
	}
	if !r.PetType.Valid() {
		return ErrInvalidPetType
	}
	if r.Breed == "" {
		return ErrBreedRequired
	}
	return nil
}

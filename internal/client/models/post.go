package models

import "time"

// Post is a published post as seen by the current (possibly anonymous) user.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	AuthorLogin   *string   `json:"authorLogin,omitempty"`
	AuthorAvatar  *string   `json:"authorAvatar,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Rating        int       `json:"rating"`
	UserRating    *int      `json:"user_rating,omitempty"`
	CommentsCount int       `json:"comments_count"`
	IsFavorited   bool      `json:"is_favorited"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Author returns the author's login, falling back to the author id.
func (p Post) Author() string {
	if p.AuthorLogin != nil && *p.AuthorLogin != "" {
		return *p.AuthorLogin
	}
	return p.AuthorID
}

// PostInput is the create/update payload.
type PostInput struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Comment belongs to a post.
type Comment struct {
	ID           string    `json:"id"`
	PostID       string    `json:"postId"`
	AuthorID     string    `json:"authorId"`
	AuthorLogin  string    `json:"authorLogin"`
	AuthorAvatar *string   `json:"authorAvatar,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Rating values accepted by the backend.
const (
	RatingDown  = -1
	RatingClear = 0
	RatingUp    = 1
)

// RatingResult is returned after rating a post.
type RatingResult struct {
	Status string `json:"status"`
	Value  int    `json:"value"`
}

// Status is the generic acknowledgement body ({"status": "..."}).
type Status struct {
	Status string `json:"status"`
}

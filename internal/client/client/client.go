package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

// Client is the backend contract used by the services.
type Client interface {
	// Token exchanges credentials for a bearer token.
	Token(ctx context.Context, login, password string) (*models.Token, error)
	Register(ctx context.Context, u models.NewUser) (*models.User, error)

	// CurrentUser fetches the user owning token, independent of the TokenSource.
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	User(ctx context.Context, id string) (*models.User, error)
	UserPosts(ctx context.Context, id string) ([]models.Post, error)

	Posts(ctx context.Context) ([]models.Post, error)
	MyPosts(ctx context.Context) ([]models.Post, error)
	Post(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	RatePost(ctx context.Context, id string, value int) (*models.RatingResult, error)

	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	Favorites(ctx context.Context) ([]models.Post, error)
	AddFavorite(ctx context.Context, postID string) error
	RemoveFavorite(ctx context.Context, postID string) error

	SearchPosts(ctx context.Context, q string) ([]models.Post, error)
	SearchUsers(ctx context.Context, q string) ([]models.User, error)

	UploadAvatar(ctx context.Context, filename string, r io.Reader) (*models.Upload, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (*models.Upload, error)

	// Ping reports whether the backend answers HTTP at all.
	Ping(ctx context.Context) error
}

// TokenSource supplies the bearer token for authenticated calls; "" means
// the call is made anonymously.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

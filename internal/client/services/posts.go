package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
)

// PostService covers posts, ratings and comments.
type PostService interface {
	Feed(ctx context.Context) ([]models.Post, error)
	Mine(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, in models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	Rate(ctx context.Context, id string, value int) (*models.RatingResult, error)

	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	Comment(ctx context.Context, postID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

type postService struct {
	client client.Client
}

func NewPostService(c client.Client) PostService {
	return &postService{client: c}
}

func (s *postService) Feed(ctx context.Context) ([]models.Post, error) {
	return s.client.Posts(ctx)
}

func (s *postService) Mine(ctx context.Context) ([]models.Post, error) {
	return s.client.MyPosts(ctx)
}

func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	if err := requireField("post", id); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, id)
}

func validatePost(in models.PostInput) error {
	return validation.Struct(validation.PostForm{Title: in.Title, Content: in.Content})
}

func (s *postService) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	return s.client.CreatePost(ctx, in)
}

func (s *postService) Update(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	if err := requireField("post", id); err != nil {
		return nil, err
	}
	if err := validatePost(in); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	return s.client.UpdatePost(ctx, id, in)
}

func (s *postService) Delete(ctx context.Context, id string) error {
	if err := requireField("post", id); err != nil {
		return err
	}
	return s.client.DeletePost(ctx, id)
}

func (s *postService) Rate(ctx context.Context, id string, value int) (*models.RatingResult, error) {
	if err := requireField("post", id); err != nil {
		return nil, err
	}
	if err := validation.Struct(validation.RatingForm{Value: value}); err != nil {
		return nil, err
	}
	return s.client.RatePost(ctx, id, value)
}

func (s *postService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := requireField("post", postID); err != nil {
		return nil, err
	}
	return s.client.Comments(ctx, postID)
}

func (s *postService) Comment(ctx context.Context, postID, content string) (*models.Comment, error) {
	if err := requireField("post", postID); err != nil {
		return nil, err
	}
	if err := validation.Struct(validation.CommentForm{Content: content}); err != nil {
		return nil, err
	}
	return s.client.CreateComment(ctx, postID, strings.TrimSpace(content))
}

func (s *postService) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := requireField("post", postID); err != nil {
		return err
	}
	if err := requireField("comment", commentID); err != nil {
		return err
	}
	return s.client.DeleteComment(ctx, postID, commentID)
}

// requireID rejects blank identifiers before they turn into odd URLs.
func requireField(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &validation.ValidationError{Fields: map[string]string{field: "is required"}}
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
)

// SocialService covers favorites, search and other users' profiles.
type SocialService interface {
	Favorites(ctx context.Context) ([]models.Post, error)
	// ToggleFavorite flips p.IsFavorited before calling the backend and
	// restores it if the call fails.
	ToggleFavorite(ctx context.Context, p *models.Post) error
	AddFavorite(ctx context.Context, postID string) error
	RemoveFavorite(ctx context.Context, postID string) error

	SearchPosts(ctx context.Context, q string) ([]models.Post, error)
	SearchUsers(ctx context.Context, q string) ([]models.User, error)

	Profile(ctx context.Context, userID string) (*models.User, []models.Post, error)
}

type socialService struct {
	client client.Client
}

func NewSocialService(c client.Client) SocialService {
	return &socialService{client: c}
}

func (s *socialService) Favorites(ctx context.Context) ([]models.Post, error) {
	return s.client.Favorites(ctx)
}

func (s *socialService) ToggleFavorite(ctx context.Context, p *models.Post) error {
	was := p.IsFavorited
	p.IsFavorited = !was

	var err error
	if was {
		err = s.client.RemoveFavorite(ctx, p.ID)
	} else {
		err = s.client.AddFavorite(ctx, p.ID)
	}
	if err != nil {
		p.IsFavorited = was
		return err
	}
	return nil
}

func (s *socialService) AddFavorite(ctx context.Context, postID string) error {
	if err := requireField("post", postID); err != nil {
		return err
	}
	return s.client.AddFavorite(ctx, postID)
}

func (s *socialService) RemoveFavorite(ctx context.Context, postID string) error {
	if err := requireField("post", postID); err != nil {
		return err
	}
	return s.client.RemoveFavorite(ctx, postID)
}

func (s *socialService) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	if err := requireField("query", q); err != nil {
		return nil, err
	}
	return s.client.SearchPosts(ctx, q)
}

func (s *socialService) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	if err := requireField("query", q); err != nil {
		return nil, err
	}
	return s.client.SearchUsers(ctx, q)
}

func (s *socialService) Profile(ctx context.Context, userID string) (*models.User, []models.Post, error) {
	if err := requireField("user", userID); err != nil {
		return nil, nil, err
	}
	u, err := s.client.User(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.client.UserPosts(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("user posts: %w", err)
	}
	return u, posts, nil
}

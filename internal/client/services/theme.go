package services

import (
	"context"

	"github.com/dmitrijs2005/microblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/microblog/internal/markdown"
)

// ThemeService persists the colour theme used to render posts.
type ThemeService interface {
	// Get returns the stored theme, ThemeSystem when none or an unknown one is stored.
	Get(ctx context.Context) markdown.Theme
	Set(ctx context.Context, theme string) (markdown.Theme, error)
}

type themeService struct {
	meta metadata.Repository
}

func NewThemeService(meta metadata.Repository) ThemeService {
	return &themeService{meta: meta}
}

func (s *themeService) Get(ctx context.Context) markdown.Theme {
	v, ok, err := s.meta.Get(ctx, metadata.KeyTheme)
	if err != nil || !ok {
		return markdown.ThemeSystem
	}
	t, err := markdown.ParseTheme(v)
	if err != nil {
		return markdown.ThemeSystem
	}
	return t
}

func (s *themeService) Set(ctx context.Context, theme string) (markdown.Theme, error) {
	t, err := markdown.ParseTheme(theme)
	if err != nil {
		return "", err
	}
	if err := s.meta.Set(ctx, metadata.KeyTheme, string(t)); err != nil {
		return "", err
	}
	return t, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
	"github.com/dmitrijs2005/microblog/internal/filex"
)

// ProfileService manages the current user's profile and uploads. Every
// change to the user is committed to the session.
type ProfileService interface {
	Me(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	UploadAvatar(ctx context.Context, path string) (*models.Upload, error)
	UploadImage(ctx context.Context, path string) (*models.Upload, error)
}

type profileService struct {
	client  client.Client
	session *session.Controller
}

func NewProfileService(c client.Client, s *session.Controller) ProfileService {
	return &profileService{client: c, session: s}
}

func (p *profileService) Me(ctx context.Context) (*models.User, error) {
	u, err := p.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.session.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (p *profileService) Update(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Email == nil && upd.Login == nil && upd.Bio == nil {
		return nil, &validation.ValidationError{Fields: map[string]string{"profile": "nothing to update"}}
	}
	form := validation.ProfileForm{Email: deref(upd.Email), Login: deref(upd.Login)}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	u, err := p.client.UpdateMe(ctx, upd)
	if err != nil {
		return nil, err
	}
	if err := p.session.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader) (*models.Upload, error)

// upload checks the file locally against the backend's limits before sending it.
func (p *profileService) upload(ctx context.Context, path string, send uploadFunc) (*models.Upload, error) {
	f, size, err := filex.OpenRegular(path)
	if err != nil {
		return nil, &validation.ValidationError{Fields: map[string]string{"file": err.Error()}}
	}
	defer f.Close()

	if err := validation.Struct(validation.UploadForm{Filename: f.Name(), Size: size}); err != nil {
		return nil, err
	}
	return send(ctx, filepath.Base(f.Name()), f)
}

func (p *profileService) UploadAvatar(ctx context.Context, path string) (*models.Upload, error) {
	up, err := p.upload(ctx, path, p.client.UploadAvatar)
	if err != nil {
		return nil, err
	}
	// The backend stores the new avatar URL on the user; pick it up.
	if _, err := p.Me(ctx); err != nil {
		return up, fmt.Errorf("refresh profile: %w", err)
	}
	return up, nil
}

func (p *profileService) UploadImage(ctx context.Context, path string) (*models.Upload, error) {
	return p.upload(ctx, path, p.client.UploadImage)
}

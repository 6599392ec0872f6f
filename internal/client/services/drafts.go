package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/microblog/internal/client/storage"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
	"github.com/dmitrijs2005/microblog/internal/dbx"
)

// DraftService keeps unpublished posts in the local database. Drafts can be
// written offline; Publish sends one to the backend and removes it locally.
type DraftService interface {
	Save(ctx context.Context, d *models.Draft) error
	List(ctx context.Context) ([]models.Draft, error)
	Get(ctx context.Context, id string) (*models.Draft, error)
	Delete(ctx context.Context, id string) error
	// FromPost starts a draft that edits an existing post.
	FromPost(ctx context.Context, postID string) (*models.Draft, error)
	Publish(ctx context.Context, id string) (*models.Post, error)
}

type draftService struct {
	client client.Client
	repos  *storage.Repositories
	now    func() time.Time
}

func NewDraftService(c client.Client, repos *storage.Repositories) DraftService {
	return &draftService{client: c, repos: repos, now: time.Now}
}

// Save creates the draft when d.ID is empty (assigning a new id) and updates
// it otherwise. A draft needs a title or some content.
func (s *draftService) Save(ctx context.Context, d *models.Draft) error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return &validation.ValidationError{Fields: map[string]string{"draft": "is empty"}}
	}

	now := s.now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	if err := s.repos.Drafts.Upsert(ctx, d); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func (s *draftService) List(ctx context.Context) ([]models.Draft, error) {
	return s.repos.Drafts.List(ctx)
}

func (s *draftService) Get(ctx context.Context, id string) (*models.Draft, error) {
	return s.repos.Drafts.GetByID(ctx, id)
}

func (s *draftService) Delete(ctx context.Context, id string) error {
	if err := s.repos.Drafts.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting draft: %w", err)
	}
	return nil
}

func (s *draftService) FromPost(ctx context.Context, postID string) (*models.Draft, error) {
	p, err := s.client.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	d := &models.Draft{PostID: p.ID, Title: p.Title, Content: p.Content}
	if err := s.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Publish validates the draft, creates or updates the post and deletes the
// draft. A failed publish leaves the draft in place. The backend call runs
// outside the transaction: a 401 ends the session, which writes to the same
// database.
//
// If the draft was saved again while the post was being sent, it is kept and
// pointed at the published post so the newer text is not lost.
func (s *draftService) Publish(ctx context.Context, id string) (*models.Post, error) {
	d, err := s.repos.Drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePost(d.Input()); err != nil {
		return nil, err
	}

	in := d.Input()
	in.Title = strings.TrimSpace(in.Title)
	var post *models.Post
	if d.PostID == "" {
		post, err = s.client.CreatePost(ctx, in)
	} else {
		post, err = s.client.UpdatePost(ctx, d.PostID, in)
	}
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := drafts.NewSQLiteRepository(tx)

		cur, err := repo.GetByID(ctx, d.ID)
		if errors.Is(err, drafts.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if cur.UpdatedAt.Equal(d.UpdatedAt) {
			return repo.DeleteByID(ctx, d.ID)
		}
		cur.PostID = post.ID
		return repo.Upsert(ctx, cur)
	})
	if err != nil {
		return post, fmt.Errorf("post %s published but draft not updated: %w", post.ID, err)
	}
	return post, nil
}

package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
)

func (a *App) Feed(ctx context.Context, _ []string) error {
	posts, err := a.postService.Feed(ctx)
	if err != nil {
		return err
	}
	a.printPosts(posts, "No posts yet.")
	return nil
}

func (a *App) MyPosts(ctx context.Context, _ []string) error {
	posts, err := a.postService.Mine(ctx)
	if err != nil {
		return err
	}
	a.printPosts(posts, "You have not posted anything yet.")
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	p, err := a.postService.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printPost(p)
	return nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	list, err := a.postService.Comments(ctx, id)
	if err != nil {
		return err
	}
	a.printComments(list)
	return nil
}

// askImage offers to upload an image and returns its URL, or nil.
func (a *App) askImage(ctx context.Context) (*string, error) {
	path, err := GetSimpleText(a.reader, "Image file (empty for none)", a.out)
	if err != nil || path == "" {
		return nil, err
	}
	up, err := a.profileService.UploadImage(ctx, path)
	if err != nil {
		return nil, err
	}
	return &up.URL, nil
}

// Create writes a new post. When the server cannot be reached the post is
// kept as a local draft instead.
func (a *App) Create(ctx context.Context, _ []string) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content (markdown)", a.out)
	if err != nil {
		return err
	}
	in := models.PostInput{Title: title, Content: content}

	p, err := a.postService.Create(ctx, in)
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ctx, ModeOffline)
		d := &models.Draft{Title: title, Content: content}
		if err := a.draftService.Save(ctx, d); err != nil {
			return err
		}
		a.warn("Server is unavailable. Saved as draft " + d.ID + "; publish it later with 'draft publish " + d.ID + "'.")
		return nil
	}
	if err != nil {
		return err
	}

	if img, err := a.askImage(ctx); err != nil {
		a.presentError(ctx, err)
	} else if img != nil {
		in.ImageURL = img
		if p, err = a.postService.Update(ctx, p.ID, in); err != nil {
			return err
		}
	}

	a.success("Published " + p.ID)
	return nil
}

// Edit changes the title and content of a post; empty answers keep the
// current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	p, err := a.postService.Get(ctx, id)
	if err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "Title ["+p.Title+"]", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content (empty to keep)", a.out)
	if err != nil {
		return err
	}

	in := models.PostInput{Title: keep(p.Title, title), Content: keep(p.Content, content), ImageURL: p.ImageURL}
	if _, err := a.postService.Update(ctx, p.ID, in); err != nil {
		return err
	}
	a.success("Updated " + p.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Delete post "+id+"?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.postService.Delete(ctx, id); err != nil {
		return err
	}
	a.success("Deleted " + id)
	return nil
}

var ratingValues = map[string]int{
	"up": models.RatingUp, "+": models.RatingUp, "1": models.RatingUp, "+1": models.RatingUp,
	"down": models.RatingDown, "-": models.RatingDown, "-1": models.RatingDown,
	"clear": models.RatingClear, "0": models.RatingClear,
}

func (a *App) Rate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	v, ok := ratingValues[strings.ToLower(args[1])]
	if !ok {
		return errUsage
	}
	if _, err := a.postService.Rate(ctx, args[0], v); err != nil {
		return err
	}
	p, err := a.postService.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.success("Rating of " + p.ID + " is now " + ratingLabel(*p))
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	text := strings.Join(args[min(1, len(args)):], " ")
	if text == "" {
		if text, err = GetMultiline(a.reader, "Enter comment", a.out); err != nil {
			return err
		}
	}
	c, err := a.postService.Comment(ctx, id, text)
	if err != nil {
		return err
	}
	a.success("Commented " + c.ID)
	return nil
}

func (a *App) Uncomment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if err := a.postService.DeleteComment(ctx, args[0], args[1]); err != nil {
		return err
	}
	a.success("Comment deleted.")
	return nil
}

package cli

import (
	"context"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

// Profile shows the current user; "profile edit" changes email, login or bio.
func (a *App) Profile(ctx context.Context, args []string) error {
	u, err := a.profileService.Me(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		a.printUser(u)
		return nil
	}
	if args[0] != "edit" {
		return errUsage
	}

	var upd models.ProfileUpdate
	email, err := GetSimpleText(a.reader, "Email ["+u.Email+"] (empty to keep)", a.out)
	if err != nil {
		return err
	}
	login, err := GetSimpleText(a.reader, "Login ["+u.Login+"] (empty to keep)", a.out)
	if err != nil {
		return err
	}
	bio, err := GetMultiline(a.reader, "Bio (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if email != "" {
		upd.Email = &email
	}
	if login != "" {
		upd.Login = &login
	}
	if bio != "" {
		upd.Bio = &bio
	}

	u, err = a.profileService.Update(ctx, upd)
	if err != nil {
		return err
	}
	a.success("Profile updated.")
	a.printUser(u)
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	path, err := a.arg(args, 0, "Enter image file")
	if err != nil {
		return err
	}
	up, err := a.profileService.UploadAvatar(ctx, path)
	if err != nil {
		return err
	}
	a.success("Avatar updated: " + a.http.ResolveURL(up.URL))
	return nil
}

// Upload sends an image and prints the markdown to embed it in a post.
func (a *App) Upload(ctx context.Context, args []string) error {
	path, err := a.arg(args, 0, "Enter image file")
	if err != nil {
		return err
	}
	up, err := a.profileService.UploadImage(ctx, path)
	if err != nil {
		return err
	}
	url := a.http.ResolveURL(up.URL)
	a.success("Uploaded: " + url)
	a.println("Markdown: ![](" + url + ")")
	return nil
}

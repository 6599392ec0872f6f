package cli

import (
	"context"
	"strings"
)

// Fav toggles the favorite mark of a post.
func (a *App) Fav(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	p, err := a.postService.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.socialService.ToggleFavorite(ctx, p); err != nil {
		return err
	}
	if p.IsFavorited {
		a.success("Added " + p.ID + " to favorites.")
	} else {
		a.success("Removed " + p.ID + " from favorites.")
	}
	return nil
}

func (a *App) Unfav(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter post id")
	if err != nil {
		return err
	}
	if err := a.socialService.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	a.success("Removed " + id + " from favorites.")
	return nil
}

func (a *App) Favorites(ctx context.Context, _ []string) error {
	posts, err := a.socialService.Favorites(ctx)
	if err != nil {
		return err
	}
	a.printPosts(posts, "No favorites yet.")
	return nil
}

func (a *App) User(ctx context.Context, args []string) error {
	id, err := a.arg(args, 0, "Enter user id")
	if err != nil {
		return err
	}
	u, posts, err := a.socialService.Profile(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(u)
	a.printPosts(posts, "No posts.")
	return nil
}

// Search looks up posts by default; "search users <q>" looks up users.
func (a *App) Search(ctx context.Context, args []string) error {
	kind := "posts"
	if len(args) > 0 && (args[0] == "posts" || args[0] == "users") {
		kind, args = args[0], args[1:]
	}
	q := strings.Join(args, " ")
	if q == "" {
		return errUsage
	}

	if kind == "users" {
		users, err := a.socialService.SearchUsers(ctx, q)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			a.println(styles.muted.Render("No users found."))
		}
		for _, u := range users {
			a.printf("%s  %s\n", styles.id.Render(u.ID), styles.heading.Render(u.Login))
		}
		return nil
	}

	posts, err := a.socialService.SearchPosts(ctx, q)
	if err != nil {
		return err
	}
	a.printPosts(posts, "No posts found.")
	return nil
}

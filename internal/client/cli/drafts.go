package cli

import (
	"context"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

func (a *App) Drafts(ctx context.Context, _ []string) error {
	list, err := a.draftService.List(ctx)
	if err != nil {
		return err
	}
	a.printDrafts(list)
	return nil
}

// Draft dispatches the draft sub-commands.
func (a *App) Draft(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, args := args[0], args[1:]

	if sub == "new" {
		return a.editDraft(ctx, &models.Draft{})
	}

	id, err := a.arg(args, 0, "Enter id")
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		d, err := a.draftService.Get(ctx, id)
		if err != nil {
			return err
		}
		a.println(styles.title.Render(d.Title))
		a.println(styles.muted.Render("saved " + formatTime(d.UpdatedAt)))
		a.println(a.renderer.Render(d.Content))
		return nil

	case "edit":
		d, err := a.draftService.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.editDraft(ctx, d)

	case "from":
		d, err := a.draftService.FromPost(ctx, id)
		if err != nil {
			return err
		}
		return a.editDraft(ctx, d)

	case "publish":
		p, err := a.draftService.Publish(ctx, id)
		if err != nil {
			return err
		}
		a.success("Published " + p.ID)
		return nil

	case "delete":
		if err := a.draftService.Delete(ctx, id); err != nil {
			return err
		}
		a.success("Draft deleted.")
		return nil

	default:
		return errUsage
	}
}

func (a *App) editDraft(ctx context.Context, d *models.Draft) error {
	title, err := GetSimpleText(a.reader, "Title ["+d.Title+"]", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content (empty to keep)", a.out)
	if err != nil {
		return err
	}
	d.Title = keep(d.Title, title)
	d.Content = keep(d.Content, content)

	if err := a.draftService.Save(ctx, d); err != nil {
		return err
	}
	a.success("Saved draft " + d.ID)
	return nil
}

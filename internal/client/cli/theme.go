package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/microblog/internal/markdown"
)

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("theme: " + string(a.renderer.Theme()))
		return nil
	}
	t, err := a.themeService.Set(ctx, args[0])
	if err != nil {
		a.fail(err.Error())
		return nil
	}
	if err := a.useTheme(t); err != nil {
		return err
	}
	a.success("Theme set to " + string(t))
	return nil
}

// Render previews markdown in the terminal, or prints the HTML the web
// client would show with --html.
func (a *App) Render(_ context.Context, args []string) error {
	html := len(args) > 0 && args[0] == "--html"
	if html {
		args = args[1:]
	}

	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = GetMultiline(a.reader, "Enter markdown", a.out); err != nil {
			return err
		}
	}

	if html {
		a.println(markdown.Render(text))
		return nil
	}
	a.println(a.renderer.Render(text))
	return nil
}

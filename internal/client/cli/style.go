package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

var styles = struct {
	title   lipgloss.Style
	heading lipgloss.Style
	id      lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	prompt  lipgloss.Style
	box     lipgloss.Style
}{
	title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	heading: lipgloss.NewStyle().Bold(true),
	id:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	muted:   lipgloss.NewStyle().Faint(true),
	ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) success(msg string) {
	a.println(styles.ok.Render(msg))
}

func (a *App) warn(msg string) {
	a.println(styles.warn.Render(msg))
}

func (a *App) fail(msg string) {
	a.println(styles.err.Render(msg))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func ratingLabel(p models.Post) string {
	s := fmt.Sprintf("%+d", p.Rating)
	if p.UserRating != nil {
		switch *p.UserRating {
		case models.RatingUp:
			s += " (you: up)"
		case models.RatingDown:
			s += " (you: down)"
		}
	}
	return s
}

// postLine is the one-line summary used in lists.
func postLine(p models.Post) string {
	var b strings.Builder
	b.WriteString(styles.id.Render(p.ID))
	b.WriteString("  ")
	b.WriteString(styles.heading.Render(p.Title))
	b.WriteString(styles.muted.Render(fmt.Sprintf("  by %s, %s, rating %s, %d comments",
		p.Author(), formatTime(p.CreatedAt), ratingLabel(p), p.CommentsCount)))
	if p.IsFavorited {
		b.WriteString(styles.warn.Render("  *fav*"))
	}
	return b.String()
}

func (a *App) printPosts(posts []models.Post, empty string) {
	if len(posts) == 0 {
		a.println(styles.muted.Render(empty))
		return
	}
	for _, p := range posts {
		a.println(postLine(p))
	}
}

func (a *App) printPost(p *models.Post) {
	a.println(styles.title.Render(p.Title))
	a.println(styles.muted.Render(fmt.Sprintf("%s  by %s  %s  rating %s  %d comments",
		p.ID, p.Author(), formatTime(p.CreatedAt), ratingLabel(*p), p.CommentsCount)))
	if p.IsFavorited {
		a.println(styles.warn.Render("in your favorites"))
	}
	if p.ImageURL != nil && *p.ImageURL != "" {
		a.println("image: " + a.http.ResolveURL(*p.ImageURL))
	}
	a.println(a.renderer.Render(p.Content))
}

func (a *App) printUser(u *models.User) {
	lines := []string{
		styles.title.Render(u.Login),
		styles.muted.Render("id " + u.ID),
		"email: " + u.Email,
	}
	if u.Bio != nil && *u.Bio != "" {
		lines = append(lines, "bio: "+*u.Bio)
	}
	if u.AvatarURL != nil && *u.AvatarURL != "" {
		lines = append(lines, "avatar: "+a.http.ResolveURL(*u.AvatarURL))
	}
	lines = append(lines, "joined: "+formatTime(u.CreatedAt))
	a.println(styles.box.Render(strings.Join(lines, "\n")))
}

func (a *App) printComments(list []models.Comment) {
	if len(list) == 0 {
		a.println(styles.muted.Render("No comments yet."))
		return
	}
	for _, c := range list {
		a.printf("%s  %s %s\n  %s\n",
			styles.id.Render(c.ID), styles.heading.Render(c.AuthorLogin),
			styles.muted.Render(formatTime(c.CreatedAt)), c.Content)
	}
}

func (a *App) printDrafts(list []models.Draft) {
	if len(list) == 0 {
		a.println(styles.muted.Render("No drafts."))
		return
	}
	for _, d := range list {
		kind := "new post"
		if d.PostID != "" {
			kind = "edits " + d.PostID
		}
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		a.printf("%s  %s%s\n", styles.id.Render(d.ID), styles.heading.Render(title),
			styles.muted.Render(fmt.Sprintf("  %s, saved %s", kind, formatTime(d.UpdatedAt))))
	}
}

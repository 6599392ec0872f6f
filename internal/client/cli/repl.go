package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dmitrijs2005/microblog/internal/client/session"
)

// command is one REPL verb.
type command struct {
	name  string
	args  string
	help  string
	needs session.Requirement
	run   func(ctx context.Context, args []string) error
}

// errQuit ends the loop.
var errQuit = errors.New("quit")

func (a *App) commands() []command {
	return []command{
		{name: "help", help: "show available commands", run: a.Help},
		{name: "status", help: "show session and connection status", run: a.Status},

		{name: "login", args: "[login]", help: "log in", needs: session.RequireAnonymous, run: a.Login},
		{name: "register", help: "create an account", needs: session.RequireAnonymous, run: a.Register},
		{name: "logout", help: "log out", needs: session.RequireAuthenticated, run: a.Logout},
		{name: "forget", help: "log out and erase local settings", run: a.Forget},

		{name: "feed", help: "list recent posts", run: a.Feed},
		{name: "show", args: "<post>", help: "show a post", run: a.Show},
		{name: "comments", args: "<post>", help: "list comments of a post", run: a.Comments},
		{name: "user", args: "<user>", help: "show a user and their posts", run: a.User},
		{name: "search", args: "[posts|users] <query>", help: "search posts or users", run: a.Search},

		{name: "my", help: "list your posts", needs: session.RequireAuthenticated, run: a.MyPosts},
		{name: "create", help: "write a new post", needs: session.RequireAuthenticated, run: a.Create},
		{name: "edit", args: "<post>", help: "edit your post", needs: session.RequireAuthenticated, run: a.Edit},
		{name: "delete", args: "<post>", help: "delete your post", needs: session.RequireAuthenticated, run: a.Delete},
		{name: "rate", args: "<post> up|down|clear", help: "rate a post", needs: session.RequireAuthenticated, run: a.Rate},
		{name: "comment", args: "<post> [text]", help: "comment on a post", needs: session.RequireAuthenticated, run: a.Comment},
		{name: "uncomment", args: "<post> <comment>", help: "delete your comment", needs: session.RequireAuthenticated, run: a.Uncomment},

		{name: "fav", args: "<post>", help: "toggle a favorite", needs: session.RequireAuthenticated, run: a.Fav},
		{name: "unfav", args: "<post>", help: "remove a favorite", needs: session.RequireAuthenticated, run: a.Unfav},
		{name: "favorites", help: "list your favorites", needs: session.RequireAuthenticated, run: a.Favorites},

		{name: "profile", args: "[edit]", help: "show or edit your profile", needs: session.RequireAuthenticated, run: a.Profile},
		{name: "avatar", args: "<file>", help: "upload a new avatar", needs: session.RequireAuthenticated, run: a.Avatar},
		{name: "upload", args: "<file>", help: "upload an image for a post", needs: session.RequireAuthenticated, run: a.Upload},

		{name: "drafts", help: "list local drafts", needs: session.RequireAuthenticated, run: a.Drafts},
		{name: "draft", args: "new|edit|show|publish|delete|from <id>", help: "manage a draft", needs: session.RequireAuthenticated, run: a.Draft},

		{name: "theme", args: "[light|dark|system]", help: "show or set the theme", run: a.Theme},
		{name: "render", args: "[--html] [text]", help: "preview markdown", run: a.Render},
		{name: "exit", help: "leave the program", run: func(context.Context, []string) error { return errQuit }},
		{name: "quit", run: func(context.Context, []string) error { return errQuit }},
	}
}

func (a *App) lookup(name string) (command, bool) {
	for _, c := range a.commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// suggest returns the closest command names to name.
func (a *App) suggest(name string) []string {
	cmds := a.commands()
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.name)
	}

	matches := fuzzy.Find(name, names)
	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].Str)
	}
	return out
}

// runREPL reads commands until EOF, exit/quit or ctx is done. Errors are
// presented and never end the loop.
func (a *App) runREPL(ctx context.Context) {
	for ctx.Err() == nil {
		a.printf("%s ", styles.prompt.Render("mb "+a.getStatus()+">"))
		line, err := a.reader.ReadString('\n')
		if line == "" && err != nil {
			if !errors.Is(err, io.EOF) {
				a.log.Error(ctx, "read command", "err", err)
			}
			return
		}
		if a.exec(ctx, line) {
			a.println("Bye!")
			return
		}
	}
}

// exec runs one command line and reports whether the loop should stop.
func (a *App) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	cmd, ok := a.lookup(parts[0])
	if !ok {
		msg := "Unknown command: " + parts[0]
		if s := a.suggest(parts[0]); len(s) > 0 {
			msg += ". Did you mean: " + strings.Join(s, ", ") + "?"
		}
		a.println(msg)
		return false
	}

	switch session.Gate(a.session.Snapshot(), cmd.needs) {
	case session.Wait:
		a.warn("Still restoring your session, try again in a moment.")
		return false
	case session.RedirectToAuth:
		a.warn(msgLoginFirst)
		return false
	case session.RedirectToHome:
		a.warn("You are already logged in as " + a.session.Snapshot().Login() + ".")
		return false
	}

	err := cmd.run(ctx, parts[1:])
	switch {
	case err == nil:
	case errors.Is(err, errQuit):
		return true
	case errors.Is(err, errUsage):
		a.println("Usage: " + strings.TrimSpace(cmd.name+" "+cmd.args))
	default:
		a.presentError(ctx, err)
	}
	return false
}

// Help lists the commands the current session may run.
func (a *App) Help(_ context.Context, _ []string) error {
	snap := a.session.Snapshot()
	for _, c := range a.commands() {
		if c.help == "" || session.Gate(snap, c.needs) != session.Allow {
			continue
		}
		usage := strings.TrimSpace(c.name + " " + c.args)
		a.printf("  %-42s %s\n", usage, styles.muted.Render(c.help))
	}
	return nil
}

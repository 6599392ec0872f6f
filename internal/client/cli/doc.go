// Package cli provides the interactive microblog command-line client.
//
// It wires configuration, local storage, the session controller, the REST
// client and the application services into a read-eval-print loop. Startup
// restores a stored session before the first command runs, and a background
// watcher keeps the online/offline indicator current.
//
// Commands are gated on the session: login and register need an anonymous
// session; writing posts, comments, favorites, the profile and drafts need
// a logged-in one; reading the feed, posts, users and search is open to all.
//
// Errors never leave the loop. Invalid input is reported per field, a
// rejected token ends the session with a "session expired" notice, missing
// resources print "not found" and anything else asks to try again later.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

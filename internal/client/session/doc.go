// Package session holds the client's belief about who is logged in.
//
// A Controller owns the bearer token, the current user record and a Status
// (Initializing, Authenticated or Anonymous). It is created by the
// application root and passed to whatever needs it; there is no package-level
// instance. The token is persisted through a TokenStore, the user record is
// always re-fetched through a UserFetcher when a stored token is found.
//
// Gate turns a Snapshot into a routing Decision for commands that require an
// authenticated or anonymous user.
package session

// Package services contains the application services of the microblog client.
//
// Services sit between the REPL and the lower layers: they validate input
// (package validation), call the backend (package client), commit session
// changes (package session) and use the local repositories for drafts and
// settings. They return errors from those layers unchanged or wrapped, so
// callers can still match them with errors.Is and errors.As.
package services

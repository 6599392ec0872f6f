// Package drafts provides the client-side persistence layer for post drafts.
//
// # Overview
//
// A draft is a post being written locally, either new or an edit of a
// published post (PostID set). Drafts survive restarts and can be written
// while the backend is unreachable; publishing turns them into posts.
//
// The SQLite implementation works over a dbx.DBTX, so the same repository can
// be bound to a *sql.DB or to a *sql.Tx inside dbx.WithTx.
//
// Typical Usage
//
//	repo := drafts.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, d)
//	list, _ := repo.List(ctx)
//	one, _ := repo.GetByID(ctx, id)
//	_ = repo.DeleteByID(ctx, id)
package drafts

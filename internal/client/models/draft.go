package models

import "time"

// Draft is a post kept in the local database until it is published.
// PostID is set when the draft edits an already published post.
type Draft struct {
	ID        string
	PostID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Input converts the draft into a create/update payload.
func (d Draft) Input() PostInput {
	return PostInput{Title: d.Title, Content: d.Content}
}

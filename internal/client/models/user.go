// Package models defines the client-side data models of the microblog CLI:
// wire representations exchanged with the REST backend and locally stored
// drafts.
package models

import "time"

// User is the public profile returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Login     string    `json:"login"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser is the registration payload.
type NewUser struct {
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable profile fields; nil fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	Email *string `json:"email,omitempty"`
	Login *string `json:"login,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// Token is the response of the token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Upload is the response of the upload endpoints.
type Upload struct {
	URL string `json:"url"`
}

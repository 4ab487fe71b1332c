package domain

import "time"

// User represents a user authenticated through GitHub.
// GitHubID is the natural key: at most one row exists per GitHub account,
// created on first login and never updated by the login flow afterwards.
type User struct {
	ID        string    `json:"id" db:"id"`
	GitHubID  int64     `json:"github_id" db:"github_id"`
	Login     string    `json:"login" db:"login"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	Name      *string   `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

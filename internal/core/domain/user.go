package domain

import "time"

// User is an author account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Username     string    `json:"username" bson:"username"`
	Name         *string   `json:"name" bson:"name,omitempty"`
	Avatar       *string   `json:"avatar" bson:"avatar,omitempty"`
	IsActive     bool      `json:"isActive" bson:"is_active"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// UserPatch carries the optional fields of a user update; nil means unchanged.
type UserPatch struct {
	Email        *string
	Username     *string
	Name         *string
	Avatar       *string
	IsActive     *bool
	PasswordHash *string
}

// Apply copies the set fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}

// UserFilter narrows user queries. Zero value matches every user.
type UserFilter struct {
	IsActive *bool
	IDs      []int64
}

// AuthorSummary is the denormalized author view embedded in post payloads.
type AuthorSummary struct {
	ID       int64   `json:"id"`
	Name     *string `json:"name"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Summary projects u onto its author view.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar}
}

// AuthorRank is a user ranked by the number of posts they own.
type AuthorRank struct {
	Author    AuthorSummary
	PostCount int64
}

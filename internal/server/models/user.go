package models

import "time"

// User is the stored account record. PasswordHash never leaves the server:
// it is excluded from JSON and handlers answer with PublicUser.
type User struct {
	ID           string         `db:"id" json:"id"`
	UserName     string         `db:"username" json:"username"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Settings     map[string]any `db:"settings" json:"settings"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	IsActive     bool           `db:"is_active" json:"is_active"`
}

// PublicUser is the outward projection of User.
type PublicUser struct {
	ID        string         `json:"id"`
	UserName  string         `json:"username"`
	Email     string         `json:"email"`
	Settings  map[string]any `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	IsActive  bool           `json:"is_active"`
}

// Public returns the projection of u safe to send to clients.
func (u *User) Public() PublicUser {
	settings := u.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return PublicUser{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Settings:  settings,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// ProfileUpdate carries the profile fields a user may change. Nil means
// "leave as is".
type ProfileUpdate struct {
	UserName *string
	Settings map[string]any
}

// Registration is the body of a sign-up request.
type Registration struct {
	UserName string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

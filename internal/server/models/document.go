package models

import "time"

type Document struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentUpdate is a partial update; nil fields are kept.
type DocumentUpdate struct {
	Title   *string
	Content *string
}

// DocumentInput is the body of a document create request.
type DocumentInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"max=1048576"`
}

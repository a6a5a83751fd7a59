package models

import "time"

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// UserPatch carries the mutable user fields for a partial update.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

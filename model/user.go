// Package model provides data models for the user service.
package model

import (
	"time"
)

// User represents one application account, joined to the auth provider
// record through ClerkID.
type User struct {
	Key           string    `json:"_key,omitempty"`
	ClerkID       string    `json:"clerk_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Photo         string    `json:"photo"`
	CreditBalance int       `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserUpdate is a field-level partial update for profile edits. Nil fields
// are left untouched. Identity (clerk_id), email and credit balance are not
// updatable through this path.
type UserUpdate struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Photo     *string `json:"photo,omitempty"`
}

// Fields returns the update as a bind-ready map holding only the fields
// that were supplied.
func (u UserUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Username != nil {
		fields["username"] = *u.Username
	}
	if u.FirstName != nil {
		fields["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		fields["last_name"] = *u.LastName
	}
	if u.Photo != nil {
		fields["photo"] = *u.Photo
	}
	return fields
}

// IsEmpty reports whether the update carries no fields at all.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.FirstName == nil && u.LastName == nil && u.Photo == nil
}

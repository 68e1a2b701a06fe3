// Package webhook receives and verifies Clerk webhook deliveries and maps
// them onto the user store.
package webhook

import (
	"encoding/json"

	"github.com/imaginify/user-service/model"
)

// Event types delivered by Clerk that this service acts on. Anything else
// is acknowledged and ignored.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the provider envelope: the type tag plus the raw event-specific
// payload. Data is decoded per type after dispatch.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EmailAddress is one entry of the email_addresses list on a Clerk user.
type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// UserData is the payload of user.created and user.updated events.
type UserData struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

// DeletedData is the payload of user.deleted events.
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ToUser maps a created-event payload to a new user record. The first
// listed email address is the account email; the subject id becomes the
// external identity id.
func (d UserData) ToUser() model.User {
	email := ""
	if len(d.EmailAddresses) > 0 {
		email = d.EmailAddresses[0].EmailAddress
	}
	return model.User{
		ClerkID:   d.ID,
		Email:     email,
		Username:  d.Username,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Photo:     d.ImageURL,
	}
}

// ToUpdate maps an updated-event payload to a profile update. Identity,
// email and credit balance are never part of it.
func (d UserData) ToUpdate() model.UserUpdate {
	username := d.Username
	firstName := d.FirstName
	lastName := d.LastName
	photo := d.ImageURL
	return model.UserUpdate{
		Username:  &username,
		FirstName: &firstName,
		LastName:  &lastName,
		Photo:     &photo,
	}
}

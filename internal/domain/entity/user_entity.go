package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in the Password field.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile is the projection of a user that other users may see.
type PublicProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location,omitempty"`
}

// Profile returns the public projection of u.
func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Location: u.Location}
}

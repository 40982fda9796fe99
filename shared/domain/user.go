package domain

import (
	"strings"
	"time"
)

type User struct {
	Id        int64
	Email     string
	PassHash  string
	FirstName string
	LastName  string
	Admin     bool
	CreatedAt time.Time
}

// FullName returns "First Last", falling back to the email when both are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

package model

import (
	"time"
)

const (
	PlanStarter  = "starter"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// Plans lists every subscription tier an account may hold.
var Plans = []string{PlanStarter, PlanPro, PlanBusiness}

type User struct {
	ID                string    `db:"id"`
	Email             string    `db:"email"`
	PasswordHash      string    `db:"password_hash"`
	AvatarURL         string    `db:"avatar_url"`
	Subscription      string    `db:"subscription"`
	Token             *string   `db:"token"`              // Active session, nil when logged out
	Verify            bool      `db:"verify"`             // Email ownership confirmed
	VerificationToken *string   `db:"verification_token"` // Pending verification, nil once consumed
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// UserUpdate holds the columns to change on a user. Nil fields are left untouched.
// A pointer to an empty string clears a nullable column.
type UserUpdate struct {
	AvatarURL         *string
	Subscription      *string
	Token             *string
	Verify            *bool
	VerificationToken *string
}

func (u *UserUpdate) IsEmpty() bool {
	return u.AvatarURL == nil && u.Subscription == nil && u.Token == nil &&
		u.Verify == nil && u.VerificationToken == nil
}

// PublicUser is the account view returned to clients.
type PublicUser struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

func (u *User) Public() PublicUser {
	return PublicUser{Email: u.Email, Subscription: u.Subscription}
}

func (u *User) HasSession() bool {
	return u.Token != nil && *u.Token != ""
}

func IsPlan(plan string) bool {
	for _, p := range Plans {
		if p == plan {
			return true
		}
	}
	return false
}

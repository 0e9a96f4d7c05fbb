package model

import (
	"strings"
	"time"
)

// User represents an application user record as stored in the
// `users` table. Accounts can be created three ways: with an email
// and password, through Google sign-in, or implicitly on the first
// successful OTP verification. PasswordHash is empty for accounts
// that never set a password (Google/OTP only).
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (stored lowercased).
//  PasswordHash – bcrypt hashed password; empty when unset.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  GoogleID     – Google account subject when linked; empty otherwise.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	GoogleID     string    // users.google_id
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// FullName joins the name parts for mail salutations and circle
// member cards. Returns "Member" when both parts are empty.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return "Member"
}

// Initials returns up to two uppercase letters for avatar badges.
func (u User) Initials() string {
	first := u.FirstName
	if first == "" {
		first = "M"
	}
	out := string([]rune(first)[0])
	if u.LastName != "" {
		out += string([]rune(u.LastName)[0])
	}
	return strings.ToUpper(out)
}

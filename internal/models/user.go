package models

import "time"

// User captures application-facing fields for a registered identity.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	JoinedAt     time.Time  `json:"join_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserSummary is the projection used when listing users.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile is what one user may see about another.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Summary projects u onto its listing fields.
func (u User) Summary() UserSummary {
	return UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// Profile projects u onto its public fields.
func (u User) Profile() Profile {
	return Profile{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

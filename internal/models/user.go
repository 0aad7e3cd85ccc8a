package models

import "time"

// User mirrors the users table.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber"`
	IsVerified   bool   `json:"isVerified"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt"`
}

// internal/models/admin.go
package models

import "time"

// Admin is a portal administrator account. Passwords are stored as-is;
// credential hashing is handled outside the store contract.
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminInput carries the fields needed to create an administrator.
type AdminInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

package model

import "time"

// User is an account that can authenticate and act on documents.
// Deletion is soft: the row is deactivated but kept so documents it
// uploaded retain their ownership for display and auditing.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user's role name is one of the given names.
func (u *User) HasRole(names ...RoleName) bool {
	for _, n := range names {
		if u.Role.Name == n {
			return true
		}
	}
	return false
}

package models

import (
	"time"
)

// Admin is the single administrator identity allowed into the admin API.
type Admin struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// AdminProfile is the public view of Admin returned to clients.
type AdminProfile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RoleAdmin is the only role this service knows about.
const RoleAdmin = "admin"

func (a Admin) Profile() AdminProfile {
	return AdminProfile{
		Username: a.Username,
		Email:    a.Email,
		Role:     RoleAdmin,
	}
}

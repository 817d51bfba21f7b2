package entity

import "time"

// Role represents an authorization role
// Many-to-many with User via user_roles; names compare on NormalizedName
type Role struct {
	ID             string
	Name           string
	NormalizedName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Seed roles present from system initialization.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// SeedRoles lists the roles every store starts with.
var SeedRoles = []string{RoleUser, RoleAdmin}

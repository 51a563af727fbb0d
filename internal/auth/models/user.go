package models

import "time"

// Role is the closed set of user roles. Permission checks go through the
// capability table below, checked once at the route boundary rather than
// scattered per call site.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Capability is an action a role may perform.
type Capability string

const (
	CapCreate      Capability = "create"
	CapRead        Capability = "read"
	CapUpdate      Capability = "update"
	CapDelete      Capability = "delete"
	CapIssue       Capability = "issue"
	CapReturn      Capability = "return"
	CapFlag        Capability = "flag"
	CapManageUsers Capability = "manage_users"
)

// capabilities maps each role to the set of actions it may perform.
var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapCreate: true, CapRead: true, CapUpdate: true, CapDelete: true,
		CapIssue: true, CapReturn: true, CapFlag: true, CapManageUsers: true,
	},
	RoleManager: {
		CapCreate: true, CapRead: true, CapUpdate: true,
		CapIssue: true, CapReturn: true,
	},
	RoleEmployee: {
		CapRead: true,
	},
}

// Can reports whether the role holds the capability. Unknown roles hold
// nothing.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// User is an operator of the system, not an issuance holder: holders are
// free-text names on issuances and need no account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session records a login with the device it came from.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Device    string    `json:"device"`
	ClientIP  string    `json:"client_ip"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

package domain

import "time"

// UserStatus represents lifecycle states for a directory user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// UserRole is the directory role of a user.
type UserRole string

const (
	RoleIncharge   UserRole = "Incharge"
	RoleSupervisor UserRole = "Supervisor"
	RoleSuperAdmin UserRole = "Super Admin"
	RoleIT         UserRole = "IT"
	RoleManagement UserRole = "Management"
	RoleAdmin      UserRole = "Admin"
)

var userRoles = []UserRole{RoleIncharge, RoleSupervisor, RoleSuperAdmin, RoleIT, RoleManagement, RoleAdmin}

// ParseUserRole matches v case-insensitively against the known roles.
func ParseUserRole(v string) (UserRole, bool) {
	return matchFold(v, userRoles)
}

// SummaryRoles may read the admin ticket summary.
var SummaryRoles = []UserRole{RoleSuperAdmin, RoleAdmin, RoleManagement}

// PurgeRoles may bulk delete records.
var PurgeRoles = []UserRole{RoleSuperAdmin, RoleAdmin}

// User is an entry in the identity directory.
type User struct {
	ID               string
	FullName         string
	Email            string
	Username         string
	MobileNumber     string
	Department       string
	Role             UserRole
	Status           UserStatus
	PasswordHash     string
	RefreshTokenHash *string
	PushToken        *string
	LastSeenAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasRole reports whether the user holds any of roles.
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Profile is the public view of a user joined into other records.
type Profile struct {
	ID           string
	FullName     string
	Email        string
	Username     string
	MobileNumber string
	Department   string
	Role         UserRole
	PushToken    *string
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Username:     u.Username,
		MobileNumber: u.MobileNumber,
		Department:   u.Department,
		Role:         u.Role,
		PushToken:    u.PushToken,
	}
}

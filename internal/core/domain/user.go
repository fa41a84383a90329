package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleProfesor = "profesor"
	RoleUser     = "user"

	// roleTeacherAlias is accepted on input and stored as RoleProfesor.
	roleTeacherAlias = "teacher"
)

const (
	PermManageInstitutions = "manage_institutions"
	PermExportData         = "export_data"
	PermDeleteInstitutions = "delete_institutions"
	PermViewInstitutions   = "view_institutions"
)

// User is the local record of a person authenticated by the external identity
// provider. ID is the provider's subject and never changes.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is what the identity provider vouches for after a token has been
// verified. Nothing in it has been checked against local storage.
type Identity struct {
	Subject     string
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
}

// Name returns the best human-readable name carried by the identity.
func (i Identity) Name() string {
	if n := strings.TrimSpace(i.DisplayName); n != "" {
		return n
	}
	if n := strings.TrimSpace(i.FirstName + " " + i.LastName); n != "" {
		return n
	}
	return i.Email
}

// FirstAdminPermissions is the permission set granted to the bootstrap admin.
func FirstAdminPermissions() []string {
	return []string{PermManageInstitutions, PermExportData, PermDeleteInstitutions}
}

// DefaultPermissions is the permission set granted to every later user.
func DefaultPermissions() []string {
	return []string{PermViewInstitutions}
}

// NormalizeRole maps accepted spellings to the stored role name. Unknown
// roles come back unchanged with ok=false.
func NormalizeRole(role string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case RoleAdmin, RoleDirector, RoleProfesor, RoleUser:
		return r, true
	case roleTeacherAlias:
		return RoleProfesor, true
	}
	return role, false
}

// IsKnownPermission reports whether p is one of the capability tokens.
func IsKnownPermission(p string) bool {
	switch p {
	case PermManageInstitutions, PermExportData, PermDeleteInstitutions, PermViewInstitutions:
		return true
	}
	return false
}

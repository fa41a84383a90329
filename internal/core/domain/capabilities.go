package domain

// Capability names a single entry of the Capabilities vector. Route guards
// refer to capabilities by these names.
type Capability string

const (
	CanView   Capability = "view"
	CanManage Capability = "manage"
	CanExport Capability = "export"
	CanDelete Capability = "delete"
)

// Capabilities is the boolean vector every authorized route consults.
type Capabilities struct {
	CanManage bool `json:"canManage"`
	CanView   bool `json:"canView"`
	CanExport bool `json:"canExport"`
	CanDelete bool `json:"canDelete"`
}

// Has reports whether the vector grants cp.
func (c Capabilities) Has(cp Capability) bool {
	switch cp {
	case CanView:
		return c.CanView
	case CanManage:
		return c.CanManage
	case CanExport:
		return c.CanExport
	case CanDelete:
		return c.CanDelete
	}
	return false
}

// Derive computes the capability vector for a role and explicit permission
// set. It has no side effects and is defined for every input: roles it does
// not know are treated as RoleUser.
func Derive(role string, permissions []string) Capabilities {
	r, ok := NormalizeRole(role)
	if !ok {
		r = RoleUser
	}

	granted := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		granted[p] = struct{}{}
	}
	has := func(p string) bool {
		_, ok := granted[p]
		return ok
	}

	return Capabilities{
		CanView:   true,
		CanManage: r == RoleAdmin || r == RoleDirector || has(PermManageInstitutions),
		CanExport: r == RoleAdmin || r == RoleDirector || r == RoleProfesor || has(PermExportData),
		CanDelete: r == RoleAdmin || has(PermDeleteInstitutions),
	}
}

// FallbackCapabilities is the least-privilege vector returned when the
// caller's record cannot be resolved.
func FallbackCapabilities() Capabilities {
	return Capabilities{CanView: true}
}

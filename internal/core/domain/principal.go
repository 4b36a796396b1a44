package domain

// PrincipalType identifies which kind of caller is acting.
type PrincipalType string

const (
	PrincipalAdmin   PrincipalType = "ADMIN"
	PrincipalMentor  PrincipalType = "MENTOR"
	PrincipalStudent PrincipalType = "STUDENT"
)

// Role is an administrative role carried in the caller's claims.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleCenterAdmin Role = "CENTER_ADMIN"
	RoleManager     Role = "MANAGER"
)

// Capability is the kind of access an operation needs on a group's journal.
type Capability string

const (
	CapabilityRead  Capability = "READ"
	CapabilityWrite Capability = "WRITE"
)

// Principal is the explicit caller identity threaded through every journal operation.
type Principal struct {
	ID       string        `json:"id"`
	Type     PrincipalType `json:"type"`
	Roles    []Role        `json:"roles"`
	CenterID *string       `json:"centerID,omitempty"` // Ambient center scope; nil for cross-center callers
}

// IsAdministrative reports whether the principal holds any administrative role.
func (p Principal) IsAdministrative() bool {
	for _, r := range p.Roles {
		switch r {
		case RoleSuperAdmin, RoleCenterAdmin, RoleManager:
			return true
		}
	}
	return p.Type == PrincipalAdmin
}

// SystemPrincipal is used by repair passes and membership hooks that run on behalf of the platform.
func SystemPrincipal() Principal {
	return Principal{ID: SystemActor, Type: PrincipalAdmin, Roles: []Role{RoleSuperAdmin}}
}

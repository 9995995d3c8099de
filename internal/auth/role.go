package auth

import (
	"fmt"
	"strings"
)

// Role is the single role an account holds.
type Role string

const (
	RoleAdministrator         Role = "admin"
	RoleAdministrativeOfficer Role = "oficial_administrativo"
	RoleAuthorizedUser        Role = "usuario_autorizado"
)

// Roles lists every valid role, most privileged first.
var Roles = []Role{RoleAdministrator, RoleAdministrativeOfficer, RoleAuthorizedUser}

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleAdministrativeOfficer, RoleAuthorizedUser:
		return true
	}
	return false
}

func (r Role) DisplayName() string {
	switch r {
	case RoleAdministrator:
		return "Administrador"
	case RoleAdministrativeOfficer:
		return "Oficial Administrativo"
	case RoleAuthorizedUser:
		return "Usuario Autorizado"
	}
	return string(r)
}

// ParseRole accepts only the current role vocabulary.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// LegacyRoleNames maps retired role names to their replacements. Only the
// migrate-roles command reads it.
var LegacyRoleNames = map[string]Role{
	"encargado": RoleAdministrativeOfficer,
	"policial":  RoleAuthorizedUser,
}

// Capability is a named permission checked against a role.
type Capability string

const (
	CapabilityView            Capability = "view"
	CapabilityCreateRecord    Capability = "create_record"
	CapabilityEditRecord      Capability = "edit_record"
	CapabilityApproveLeave    Capability = "approve_leave"
	CapabilityManageSanctions Capability = "manage_sanctions"
	CapabilityDelete          Capability = "delete"
	CapabilityReassignRole    Capability = "reassign_role"
	CapabilityConfigureSystem Capability = "configure_system"
)

var Capabilities = []Capability{
	CapabilityView,
	CapabilityCreateRecord,
	CapabilityEditRecord,
	CapabilityApproveLeave,
	CapabilityManageSanctions,
	CapabilityDelete,
	CapabilityReassignRole,
	CapabilityConfigureSystem,
}

type roleSet map[Role]bool

var (
	everyone      = roleSet{RoleAdministrator: true, RoleAdministrativeOfficer: true, RoleAuthorizedUser: true}
	staff         = roleSet{RoleAdministrator: true, RoleAdministrativeOfficer: true}
	administrator = roleSet{RoleAdministrator: true}
)

// capabilityTable is the only place role permissions are defined.
var capabilityTable = map[Capability]roleSet{
	CapabilityView:            everyone,
	CapabilityCreateRecord:    staff,
	CapabilityEditRecord:      staff,
	CapabilityApproveLeave:    staff,
	CapabilityManageSanctions: staff,
	CapabilityDelete:          administrator,
	CapabilityReassignRole:    administrator,
	CapabilityConfigureSystem: administrator,
}

// RoleHasCapability is the pure (role, capability) lookup.
func RoleHasCapability(role Role, capability Capability) bool {
	return capabilityTable[capability][role]
}

// HasCapability fails for anonymous and inactive actors.
func HasCapability(actor *Actor, capability Capability) bool {
	if !actor.Authenticated() {
		return false
	}
	return RoleHasCapability(actor.Role, capability)
}

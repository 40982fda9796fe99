package domain

import "time"

type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleBackoffice    Role = "BACKOFFICE"
	RoleTechnician    Role = "TECHNICIAN"
	RoleViewer        Role = "VIEWER"
)

var Roles = []Role{RoleAdministrator, RoleBackoffice, RoleTechnician, RoleViewer}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type Capability string

const (
	CapViewAllBuildings  Capability = "VIEW_ALL_BUILDINGS"
	CapManageBuildings   Capability = "MANAGE_BUILDINGS"
	CapCreateWorkOrders  Capability = "CREATE_WORK_ORDERS"
	CapApproveWorkOrders Capability = "APPROVE_WORK_ORDERS"
	CapManageAttachments Capability = "MANAGE_ATTACHMENTS"
)

// roleCapabilities maps each role to the capabilities it grants on the
// membership's scope. Viewers hold no capabilities; their membership alone
// grants visibility.
var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {
		CapManageBuildings,
		CapCreateWorkOrders,
		CapApproveWorkOrders,
		CapManageAttachments,
	},
	RoleBackoffice: {
		CapManageBuildings,
		CapCreateWorkOrders,
		CapApproveWorkOrders,
		CapManageAttachments,
	},
	RoleTechnician: {
		CapCreateWorkOrders,
		CapManageAttachments,
	},
	RoleViewer: {},
}

// Membership grants a role on one building, or globally when BuildingId is
// nil. A global administrator additionally sees every building.
type Membership struct {
	Id         int64
	UserId     int64
	BuildingId *int64
	Role       Role
	CreatedAt  time.Time
}

func (m *Membership) Global() bool {
	return m.BuildingId == nil
}

// ResolvedCapabilities returns the capability set this membership grants.
func (m *Membership) ResolvedCapabilities() []Capability {
	caps := roleCapabilities[m.Role]
	if m.Global() && m.Role == RoleAdministrator {
		out := make([]Capability, 0, len(caps)+1)
		out = append(out, CapViewAllBuildings)
		out = append(out, caps...)
		return out
	}
	return caps
}

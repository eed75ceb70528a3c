// Package auth maps admin roles to capabilities and answers the permission
// questions the services ask.
package auth

import (
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
)

// Capability is a single grant held by a role.
type Capability string

const (
	CapViewList   Capability = "view_list"
	CapViewDetail Capability = "view_detail"
	CapAdd        Capability = "add"
	CapEditAll    Capability = "edit_all"
	CapEditOwn    Capability = "edit_own"
	CapDeleteAll  Capability = "delete_all"
	CapDeleteOwn  Capability = "delete_own"
	CapImport     Capability = "import"
)

// DefaultRoles is the role table used by the API.
var DefaultRoles = map[string][]Capability{
	models.RoleAdministrator: {
		CapViewList, CapViewDetail, CapAdd, CapEditAll, CapEditOwn, CapDeleteAll, CapDeleteOwn, CapImport,
	},
	models.RoleOperator: {
		CapViewList, CapViewDetail, CapAdd, CapEditOwn, CapDeleteOwn,
	},
	models.RoleViewer: {
		CapViewList, CapViewDetail,
	},
}

// Policy answers capability checks for a fixed role table.
type Policy struct {
	roles map[string]map[Capability]bool
}

// NewPolicy compiles roles into a Policy. Unknown roles hold nothing.
func NewPolicy(roles map[string][]Capability) *Policy {
	p := &Policy{roles: make(map[string]map[Capability]bool, len(roles))}
	for role, caps := range roles {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		p.roles[role] = set
	}
	return p
}

// Has reports whether role holds c.
func (p *Policy) Has(role string, c Capability) bool {
	return p.roles[role][c]
}

// KnownRole reports whether role appears in the table.
func (p *Policy) KnownRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}

// Can implements service.Authorizer. Edit and delete are allowed through
// the "own" capability only when actor created the resource.
func (p *Policy) Can(actor models.Actor, action service.Action, ownerID int) bool {
	owns := ownerID != 0 && actor.ID != 0 && ownerID == actor.ID

	switch action {
	case service.ActionViewList:
		return p.Has(actor.Role, CapViewList)
	case service.ActionViewDetail:
		return p.Has(actor.Role, CapViewDetail)
	case service.ActionCreate:
		return p.Has(actor.Role, CapAdd)
	case service.ActionEdit:
		return p.Has(actor.Role, CapEditAll) || (owns && p.Has(actor.Role, CapEditOwn))
	case service.ActionDelete:
		return p.Has(actor.Role, CapDeleteAll) || (owns && p.Has(actor.Role, CapDeleteOwn))
	case service.ActionImport:
		return p.Has(actor.Role, CapImport)
	default:
		return false
	}
}

// Authorizer returns p.Can as a service.Authorizer.
func (p *Policy) Authorizer() service.Authorizer {
	return p.Can
}

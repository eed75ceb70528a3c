package service

import (
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// Action names an operation an actor asks to perform.
type Action string

const (
	ActionViewList   Action = "view_list"
	ActionViewDetail Action = "view_detail"
	ActionCreate     Action = "create"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionImport     Action = "import"
)

// Authorizer decides whether actor may perform action on a resource created
// by ownerID (0 when there is no resource yet). Ownership rules belong to the
// implementation.
type Authorizer func(actor models.Actor, action Action, ownerID int) bool

// AllowAll grants every action. Used by operator tooling that runs outside
// the HTTP surface.
func AllowAll(models.Actor, Action, int) bool { return true }

func authorize(can Authorizer, actor models.Actor, action Action, ownerID int) error {
	if can == nil || !can(actor, action, ownerID) {
		return &utils.PermissionError{Message: "you do not have permission to " + describe(action)}
	}
	return nil
}

func describe(action Action) string {
	switch action {
	case ActionViewList:
		return "view this list"
	case ActionViewDetail:
		return "view this item"
	case ActionCreate:
		return "create items"
	case ActionEdit:
		return "edit this item"
	case ActionDelete:
		return "delete this item"
	case ActionImport:
		return "import data"
	default:
		return string(action)
	}
}

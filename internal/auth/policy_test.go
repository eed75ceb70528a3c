package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
)

func TestPolicy_Can(t *testing.T) {
	policy := NewPolicy(DefaultRoles)

	admin := models.Actor{ID: 1, Role: models.RoleAdministrator}
	operator := models.Actor{ID: 2, Role: models.RoleOperator}
	viewer := models.Actor{ID: 3, Role: models.RoleViewer}
	stranger := models.Actor{ID: 4, Role: "intern"}

	tests := []struct {
		name    string
		actor   models.Actor
		action  service.Action
		ownerID int
		want    bool
	}{
		{"admin edits anything", admin, service.ActionEdit, 99, true},
		{"admin imports", admin, service.ActionImport, 0, true},
		{"operator creates", operator, service.ActionCreate, 0, true},
		{"operator edits own", operator, service.ActionEdit, 2, true},
		{"operator cannot edit others", operator, service.ActionEdit, 1, false},
		{"operator deletes own", operator, service.ActionDelete, 2, true},
		{"operator cannot delete unowned", operator, service.ActionDelete, 0, false},
		{"operator cannot import", operator, service.ActionImport, 0, false},
		{"viewer lists", viewer, service.ActionViewList, 0, true},
		{"viewer reads detail", viewer, service.ActionViewDetail, 0, true},
		{"viewer cannot create", viewer, service.ActionCreate, 0, false},
		{"viewer cannot edit own", viewer, service.ActionEdit, 3, false},
		{"unknown role holds nothing", stranger, service.ActionViewList, 0, false},
		{"unknown action", admin, service.Action("launch"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Can(tt.actor, tt.action, tt.ownerID))
		})
	}
}

func TestPolicy_KnownRole(t *testing.T) {
	policy := NewPolicy(DefaultRoles)
	assert.True(t, policy.KnownRole(models.RoleOperator))
	assert.False(t, policy.KnownRole("root"))
	assert.True(t, policy.Authorizer()(models.Actor{ID: 1, Role: models.RoleAdministrator}, service.ActionDelete, 5))
}

package service

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/testsupport"
)

var (
	admin    = models.Actor{ID: 1, Email: "admin@example.com", Role: models.RoleAdministrator}
	operator = models.Actor{ID: 2, Email: "ops@example.com", Role: models.RoleOperator}
	viewer   = models.Actor{ID: 3, Email: "viewer@example.com", Role: models.RoleViewer}
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// roleAuthorizer mirrors the production role table closely enough for
// service tests without importing the auth package.
func roleAuthorizer(actor models.Actor, action Action, ownerID int) bool {
	switch actor.Role {
	case models.RoleAdministrator:
		return true
	case models.RoleOperator:
		switch action {
		case ActionEdit, ActionDelete:
			return ownerID == actor.ID
		case ActionImport:
			return false
		}
		return true
	case models.RoleViewer:
		return action == ActionViewList || action == ActionViewDetail
	default:
		return false
	}
}

type fixture struct {
	territory *testsupport.Territory
	store     *testsupport.SpyStore
	reads     *cache.ReadThrough
	validator *Validator
	provinces *ProvinceService
	regencies *RegencyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, cache.NewMemoryStore(0, time.Hour))
}

func newFixtureWithStore(t *testing.T, inner cache.Store) *fixture {
	t.Helper()
	territory := testsupport.NewTerritory()
	store := &testsupport.SpyStore{Inner: inner}
	v := NewValidator(territory.Provinces(), territory.Regencies(), roleAuthorizer)
	reads := cache.NewReadThrough(store)
	provinces := NewProvinceService(territory.Provinces(), v, reads)
	return &fixture{
		territory: territory,
		store:     store,
		reads:     reads,
		validator: v,
		provinces: provinces,
		regencies: NewRegencyService(territory.Regencies(), provinces, v, reads),
	}
}

func strPtr(s string) *string { return &s }

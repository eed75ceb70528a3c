package testsupport

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// AdminUsers is an in-memory admin account store.
type AdminUsers struct {
	mu     sync.Mutex
	users  map[int]models.AdminUser
	nextID int
}

// NewAdminUsers creates an empty AdminUsers.
func NewAdminUsers() *AdminUsers {
	return &AdminUsers{users: map[int]models.AdminUser{}}
}

func (a *AdminUsers) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (a *AdminUsers) Create(_ context.Context, user *models.AdminUser) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Email, user.Email) {
			return utils.Persistence("admin_user.create", ErrConstraint)
		}
	}
	a.nextID++
	now := time.Now()
	user.ID = a.nextID
	user.CreatedAt, user.UpdatedAt = now, now
	a.users[user.ID] = *user
	return nil
}

func (a *AdminUsers) TouchLastLogin(_ context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	u.LastLoginAt = &now
	a.users[id] = u
	return nil
}

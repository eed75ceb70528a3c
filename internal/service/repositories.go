package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// ProvinceRepo is the province storage the services depend on.
// *repository.ProvinceRepository implements it.
type ProvinceRepo interface {
	Create(ctx context.Context, p *models.Province) error
	GetByID(ctx context.Context, id int) (*models.Province, error)
	Update(ctx context.Context, id int, u models.ProvinceUpdate) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	DeleteAll(ctx context.Context) (int, error)
	ListPage(ctx context.Context, query models.PageQuery) (*models.Page[models.Province], error)
	ListAll(ctx context.Context) ([]models.Province, error)
	ExistsByName(ctx context.Context, name string, excludeID int) (bool, error)
	ExistsByCode(ctx context.Context, code string, excludeID int) (bool, error)
	CountRegencies(ctx context.Context, id int) (int, error)
}

// RegencyRepo is the regency storage the services depend on.
// *repository.RegencyRepository implements it.
type RegencyRepo interface {
	Create(ctx context.Context, r *models.Regency) error
	GetByID(ctx context.Context, id int) (*models.Regency, error)
	Update(ctx context.Context, id int, u models.RegencyUpdate) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	ListPage(ctx context.Context, provinceID int, query models.PageQuery) (*models.Page[models.Regency], error)
	ListByProvince(ctx context.Context, provinceID int) ([]models.Regency, error)
	ExistsByCode(ctx context.Context, code string, excludeID int) (bool, error)
	ExistsByNameInProvince(ctx context.Context, name string, provinceID, excludeID int) (bool, error)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// notFound turns sql.ErrNoRows into a NotFoundError and passes anything else through.
func notFound(entity string, id int, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &utils.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

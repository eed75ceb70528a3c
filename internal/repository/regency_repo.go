package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/wilayah_api/internal/models"
)

const regencySelect = `
	SELECT r.id, r.province_id, r.code, r.name, r.type, r.created_by, r.created_at, r.updated_at,
	       p.name AS province_name
	FROM regencies r
	JOIN provinces p ON p.id = r.province_id`

var regencySortColumns = map[string]string{
	"code": "r.code",
	"name": "r.name",
	"type": "r.type",
}

// RegencyRepository handles database operations for regencies. Every listing
// is scoped to one province.
type RegencyRepository struct {
	db sqlx.ExtContext
}

// NewRegencyRepository creates a new RegencyRepository.
func NewRegencyRepository(db *sqlx.DB) *RegencyRepository {
	return &RegencyRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *RegencyRepository) WithTx(tx *sqlx.Tx) *RegencyRepository {
	return &RegencyRepository{db: tx}
}

// Create inserts reg and fills its ID and timestamps. A missing province
// surfaces as a foreign key violation wrapped in a PersistenceError.
func (r *RegencyRepository) Create(ctx context.Context, reg *models.Regency) error {
	const q = `
		INSERT INTO regencies (province_id, code, name, type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q, reg.ProvinceID, reg.Code, reg.Name, reg.Type, reg.CreatedBy).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return storageError("regency.create", err)
	}
	return nil
}

// GetByID returns a regency with its province name, or sql.ErrNoRows.
func (r *RegencyRepository) GetByID(ctx context.Context, id int) (*models.Regency, error) {
	var reg models.Regency
	err := sqlx.GetContext(ctx, r.db, &reg, regencySelect+` WHERE r.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageError("regency.get", err)
	}
	return &reg, nil
}

// Update applies the non-nil fields of u and refreshes updated_at.
// province_id is never touched.
func (r *RegencyRepository) Update(ctx context.Context, id int, u models.RegencyUpdate) (bool, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argIdx := 1

	if u.Code != nil {
		sets = append(sets, fmt.Sprintf("code = $%d", argIdx))
		args = append(args, *u.Code)
		argIdx++
	}
	if u.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *u.Name)
		argIdx++
	}
	if u.Type != nil {
		sets = append(sets, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *u.Type)
		argIdx++
	}

	q := fmt.Sprintf(`UPDATE regencies SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, storageError("regency.update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError("regency.update", err)
	}
	return n > 0, nil
}

// Delete removes a regency.
func (r *RegencyRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM regencies WHERE id = $1`, id)
	if err != nil {
		return false, storageError("regency.delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError("regency.delete", err)
	}
	return n > 0, nil
}

// ListPage returns one page of the regencies of provinceID.
func (r *RegencyRepository) ListPage(ctx context.Context, provinceID int, query models.PageQuery) (*models.Page[models.Regency], error) {
	w := resolvePage(query, regencySortColumns, "name", "r.id")

	where := " WHERE r.province_id = $1"
	args := []interface{}{provinceID}
	argIdx := 2

	page := &models.Page[models.Regency]{Data: []models.Regency{}}
	if err := sqlx.GetContext(ctx, r.db, &page.Total, `SELECT COUNT(*) FROM regencies r`+where, args...); err != nil {
		return nil, storageError("regency.list", err)
	}

	if term := strings.TrimSpace(query.Search); term != "" {
		where += fmt.Sprintf(" AND (r.name ILIKE $%d OR r.code ILIKE $%d)", argIdx, argIdx)
		args = append(args, containsPattern(term))
		argIdx++
	}
	if err := sqlx.GetContext(ctx, r.db, &page.Filtered, `SELECT COUNT(*) FROM regencies r`+where, args...); err != nil {
		return nil, storageError("regency.list", err)
	}

	q := fmt.Sprintf(`%s%s ORDER BY %s LIMIT $%d OFFSET $%d`, regencySelect, where, w.orderBy, argIdx, argIdx+1)
	args = append(args, w.limit, w.offset)
	if err := sqlx.SelectContext(ctx, r.db, &page.Data, q, args...); err != nil {
		return nil, storageError("regency.list", err)
	}
	return page, nil
}

// ListByProvince returns every regency of provinceID ordered by name.
func (r *RegencyRepository) ListByProvince(ctx context.Context, provinceID int) ([]models.Regency, error) {
	regencies := []models.Regency{}
	err := sqlx.SelectContext(ctx, r.db, &regencies, regencySelect+` WHERE r.province_id = $1 ORDER BY r.name, r.id`, provinceID)
	if err != nil {
		return nil, storageError("regency.list_by_province", err)
	}
	return regencies, nil
}

// ExistsByCode reports whether another regency already uses code. Codes are
// unique across all provinces.
func (r *RegencyRepository) ExistsByCode(ctx context.Context, code string, excludeID int) (bool, error) {
	var ok bool
	const q = `SELECT EXISTS(SELECT 1 FROM regencies WHERE code = $1 AND id <> $2)`
	if err := sqlx.GetContext(ctx, r.db, &ok, q, code, excludeID); err != nil {
		return false, storageError("regency.exists_by_code", err)
	}
	return ok, nil
}

// ExistsByNameInProvince reports whether another regency of provinceID
// already uses name (case-insensitive).
func (r *RegencyRepository) ExistsByNameInProvince(ctx context.Context, name string, provinceID, excludeID int) (bool, error) {
	var ok bool
	const q = `SELECT EXISTS(SELECT 1 FROM regencies WHERE province_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3)`
	if err := sqlx.GetContext(ctx, r.db, &ok, q, provinceID, name, excludeID); err != nil {
		return false, storageError("regency.exists_by_name", err)
	}
	return ok, nil
}

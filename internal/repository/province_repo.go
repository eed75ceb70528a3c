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

// regency_count is derived from regencies on every read.
const provinceSelect = `
	SELECT p.id, p.code, p.name, p.created_by, p.created_at, p.updated_at,
	       COALESCE(rc.regency_count, 0) AS regency_count
	FROM provinces p
	LEFT JOIN (
		SELECT province_id, COUNT(*) AS regency_count
		FROM regencies
		GROUP BY province_id
	) rc ON rc.province_id = p.id`

var provinceSortColumns = map[string]string{
	"name":          "p.name",
	"regency_count": "regency_count",
}

// ProvinceRepository handles database operations for provinces.
type ProvinceRepository struct {
	db sqlx.ExtContext
}

// NewProvinceRepository creates a new ProvinceRepository.
func NewProvinceRepository(db *sqlx.DB) *ProvinceRepository {
	return &ProvinceRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ProvinceRepository) WithTx(tx *sqlx.Tx) *ProvinceRepository {
	return &ProvinceRepository{db: tx}
}

// Create inserts p and fills its ID and timestamps.
func (r *ProvinceRepository) Create(ctx context.Context, p *models.Province) error {
	const q = `
		INSERT INTO provinces (code, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q, p.Code, p.Name, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return storageError("province.create", err)
	}
	return nil
}

// GetByID returns a province with its regency count, or sql.ErrNoRows.
func (r *ProvinceRepository) GetByID(ctx context.Context, id int) (*models.Province, error) {
	var p models.Province
	err := sqlx.GetContext(ctx, r.db, &p, provinceSelect+` WHERE p.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageError("province.get", err)
	}
	return &p, nil
}

// Update applies the non-nil fields of u and refreshes updated_at.
// It reports whether a row matched id.
func (r *ProvinceRepository) Update(ctx context.Context, id int, u models.ProvinceUpdate) (bool, error) {
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

	q := fmt.Sprintf(`UPDATE provinces SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, storageError("province.update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError("province.update", err)
	}
	return n > 0, nil
}

// Delete removes a province that owns no regency. It reports false when the
// province is missing or still referenced; the check and the delete are one
// statement so a concurrent regency insert cannot be swept away by cascade.
func (r *ProvinceRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM provinces p
		WHERE p.id = $1
		  AND NOT EXISTS (SELECT 1 FROM regencies r WHERE r.province_id = p.id)
	`, id)
	if err != nil {
		return false, storageError("province.delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError("province.delete", err)
	}
	return n > 0, nil
}

// DeleteAll removes every province and, by cascade, every regency.
func (r *ProvinceRepository) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM provinces`)
	if err != nil {
		return 0, storageError("province.delete_all", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("province.delete_all", err)
	}
	return int(n), nil
}

// ListPage returns one page of provinces. Total ignores the search term,
// Filtered applies it.
func (r *ProvinceRepository) ListPage(ctx context.Context, query models.PageQuery) (*models.Page[models.Province], error) {
	w := resolvePage(query, provinceSortColumns, "name", "p.id")

	where := ""
	args := []interface{}{}
	argIdx := 1
	if term := strings.TrimSpace(query.Search); term != "" {
		where = fmt.Sprintf(" WHERE (p.name ILIKE $%d OR p.code ILIKE $%d)", argIdx, argIdx)
		args = append(args, containsPattern(term))
		argIdx++
	}

	page := &models.Page[models.Province]{Data: []models.Province{}}
	if err := sqlx.GetContext(ctx, r.db, &page.Total, `SELECT COUNT(*) FROM provinces`); err != nil {
		return nil, storageError("province.list", err)
	}
	if err := sqlx.GetContext(ctx, r.db, &page.Filtered, `SELECT COUNT(*) FROM provinces p`+where, args...); err != nil {
		return nil, storageError("province.list", err)
	}

	q := fmt.Sprintf(`%s%s ORDER BY %s LIMIT $%d OFFSET $%d`, provinceSelect, where, w.orderBy, argIdx, argIdx+1)
	args = append(args, w.limit, w.offset)
	if err := sqlx.SelectContext(ctx, r.db, &page.Data, q, args...); err != nil {
		return nil, storageError("province.list", err)
	}
	return page, nil
}

// ListAll returns every province ordered by name.
func (r *ProvinceRepository) ListAll(ctx context.Context) ([]models.Province, error) {
	provinces := []models.Province{}
	if err := sqlx.SelectContext(ctx, r.db, &provinces, provinceSelect+` ORDER BY p.name, p.id`); err != nil {
		return nil, storageError("province.list_all", err)
	}
	return provinces, nil
}

// ExistsByName reports whether another province already uses name
// (case-insensitive). excludeID 0 checks every row.
func (r *ProvinceRepository) ExistsByName(ctx context.Context, name string, excludeID int) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM provinces WHERE LOWER(name) = LOWER($1) AND id <> $2)`
	return r.exists(ctx, "province.exists_by_name", q, name, excludeID)
}

// ExistsByCode reports whether another province already uses code.
func (r *ProvinceRepository) ExistsByCode(ctx context.Context, code string, excludeID int) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM provinces WHERE code = $1 AND id <> $2)`
	return r.exists(ctx, "province.exists_by_code", q, code, excludeID)
}

// CountRegencies returns how many regencies reference the province.
func (r *ProvinceRepository) CountRegencies(ctx context.Context, id int) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM regencies WHERE province_id = $1`, id); err != nil {
		return 0, storageError("province.count_regencies", err)
	}
	return count, nil
}

func (r *ProvinceRepository) exists(ctx context.Context, op, q string, args ...interface{}) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, r.db, &ok, q, args...); err != nil {
		return false, storageError(op, err)
	}
	return ok, nil
}

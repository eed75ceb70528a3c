// Package testsupport provides in-memory stand-ins for the PostgreSQL
// repositories. They honor the same constraints (unique codes and names,
// foreign keys with cascade, computed regency counts) so service and
// handler tests exercise realistic behavior without a database.
package testsupport

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// ErrConstraint is wrapped in the PersistenceError returned when a write
// violates a constraint.
var ErrConstraint = errors.New("constraint violation")

// Territory holds provinces and regencies in memory.
type Territory struct {
	mu        sync.Mutex
	provinces map[int]models.Province
	regencies map[int]models.Regency
	nextID    int

	// Fail, when set, is returned wrapped in a PersistenceError by every call.
	Fail error
}

// NewTerritory creates an empty Territory.
func NewTerritory() *Territory {
	return &Territory{provinces: map[int]models.Province{}, regencies: map[int]models.Regency{}}
}

// Provinces returns the province repository view.
func (t *Territory) Provinces() *ProvinceRepo { return &ProvinceRepo{t: t} }

// Regencies returns the regency repository view.
func (t *Territory) Regencies() *RegencyRepo { return &RegencyRepo{t: t} }

// Atomically runs fn and restores the previous state if it fails.
func (t *Territory) Atomically(fn func() error) error {
	t.mu.Lock()
	provinces := make(map[int]models.Province, len(t.provinces))
	for k, v := range t.provinces {
		provinces[k] = v
	}
	regencies := make(map[int]models.Regency, len(t.regencies))
	for k, v := range t.regencies {
		regencies[k] = v
	}
	t.mu.Unlock()

	if err := fn(); err != nil {
		t.mu.Lock()
		t.provinces, t.regencies = provinces, regencies
		t.mu.Unlock()
		return err
	}
	return nil
}

func (t *Territory) fail(op string) error {
	if t.Fail != nil {
		return utils.Persistence(op, t.Fail)
	}
	return nil
}

func (t *Territory) id() int {
	t.nextID++
	return t.nextID
}

func (t *Territory) countRegencies(provinceID int) int {
	n := 0
	for _, r := range t.regencies {
		if r.ProvinceID == provinceID {
			n++
		}
	}
	return n
}

func (t *Territory) withCount(p models.Province) models.Province {
	p.RegencyCount = t.countRegencies(p.ID)
	return p
}

func (t *Territory) withProvinceName(r models.Regency) models.Regency {
	r.ProvinceName = t.provinces[r.ProvinceID].Name
	return r
}

// ProvinceRepo is the in-memory province repository.
type ProvinceRepo struct{ t *Territory }

func (r *ProvinceRepo) Create(_ context.Context, p *models.Province) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.create"); err != nil {
		return err
	}
	for _, other := range r.t.provinces {
		if other.Code == p.Code || other.Name == p.Name {
			return utils.Persistence("province.create", ErrConstraint)
		}
	}
	now := time.Now()
	p.ID = r.t.id()
	p.CreatedAt, p.UpdatedAt = now, now
	r.t.provinces[p.ID] = *p
	return nil
}

func (r *ProvinceRepo) GetByID(_ context.Context, id int) (*models.Province, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.get"); err != nil {
		return nil, err
	}
	p, ok := r.t.provinces[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	p = r.t.withCount(p)
	return &p, nil
}

func (r *ProvinceRepo) Update(_ context.Context, id int, u models.ProvinceUpdate) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.update"); err != nil {
		return false, err
	}
	p, ok := r.t.provinces[id]
	if !ok {
		return false, nil
	}
	if u.Code != nil {
		p.Code = *u.Code
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	for oid, other := range r.t.provinces {
		if oid != id && (other.Code == p.Code || other.Name == p.Name) {
			return false, utils.Persistence("province.update", ErrConstraint)
		}
	}
	p.UpdatedAt = time.Now()
	r.t.provinces[id] = p
	return true, nil
}

func (r *ProvinceRepo) Delete(_ context.Context, id int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.delete"); err != nil {
		return false, err
	}
	if _, ok := r.t.provinces[id]; !ok || r.t.countRegencies(id) > 0 {
		return false, nil
	}
	delete(r.t.provinces, id)
	return true, nil
}

func (r *ProvinceRepo) DeleteAll(_ context.Context) (int, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.delete_all"); err != nil {
		return 0, err
	}
	n := len(r.t.provinces)
	r.t.provinces = map[int]models.Province{}
	r.t.regencies = map[int]models.Regency{}
	return n, nil
}

func (r *ProvinceRepo) ListPage(_ context.Context, query models.PageQuery) (*models.Page[models.Province], error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.list"); err != nil {
		return nil, err
	}

	all := make([]models.Province, 0, len(r.t.provinces))
	for _, p := range r.t.provinces {
		all = append(all, r.t.withCount(p))
	}
	rows := filter(all, query.Search, func(p models.Province) []string { return []string{p.Name, p.Code} })

	less := func(a, b models.Province) int { return strings.Compare(a.Name, b.Name) }
	if strings.EqualFold(strings.TrimSpace(query.SortColumn), "regency_count") {
		less = func(a, b models.Province) int { return a.RegencyCount - b.RegencyCount }
	}
	sortRows(rows, less, func(p models.Province) int { return p.ID }, query.SortDirection)

	return &models.Page[models.Province]{Data: window(rows, query), Total: len(all), Filtered: len(rows)}, nil
}

func (r *ProvinceRepo) ListAll(ctx context.Context) ([]models.Province, error) {
	page, err := r.ListPage(ctx, models.PageQuery{Limit: maxLimit})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (r *ProvinceRepo) ExistsByName(_ context.Context, name string, excludeID int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.exists_by_name"); err != nil {
		return false, err
	}
	for id, p := range r.t.provinces {
		if id != excludeID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProvinceRepo) ExistsByCode(_ context.Context, code string, excludeID int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.exists_by_code"); err != nil {
		return false, err
	}
	for id, p := range r.t.provinces {
		if id != excludeID && p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProvinceRepo) CountRegencies(_ context.Context, id int) (int, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("province.count_regencies"); err != nil {
		return 0, err
	}
	return r.t.countRegencies(id), nil
}

// RegencyRepo is the in-memory regency repository.
type RegencyRepo struct{ t *Territory }

func (r *RegencyRepo) Create(_ context.Context, reg *models.Regency) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.create"); err != nil {
		return err
	}
	if _, ok := r.t.provinces[reg.ProvinceID]; !ok {
		return utils.Persistence("regency.create", ErrConstraint)
	}
	for _, other := range r.t.regencies {
		if other.Code == reg.Code || (other.ProvinceID == reg.ProvinceID && other.Name == reg.Name) {
			return utils.Persistence("regency.create", ErrConstraint)
		}
	}
	now := time.Now()
	reg.ID = r.t.id()
	reg.CreatedAt, reg.UpdatedAt = now, now
	r.t.regencies[reg.ID] = *reg
	return nil
}

func (r *RegencyRepo) GetByID(_ context.Context, id int) (*models.Regency, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.get"); err != nil {
		return nil, err
	}
	reg, ok := r.t.regencies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	reg = r.t.withProvinceName(reg)
	return &reg, nil
}

func (r *RegencyRepo) Update(_ context.Context, id int, u models.RegencyUpdate) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.update"); err != nil {
		return false, err
	}
	reg, ok := r.t.regencies[id]
	if !ok {
		return false, nil
	}
	if u.Code != nil {
		reg.Code = *u.Code
	}
	if u.Name != nil {
		reg.Name = *u.Name
	}
	if u.Type != nil {
		reg.Type = *u.Type
	}
	for oid, other := range r.t.regencies {
		if oid != id && (other.Code == reg.Code || (other.ProvinceID == reg.ProvinceID && other.Name == reg.Name)) {
			return false, utils.Persistence("regency.update", ErrConstraint)
		}
	}
	reg.UpdatedAt = time.Now()
	r.t.regencies[id] = reg
	return true, nil
}

func (r *RegencyRepo) Delete(_ context.Context, id int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.delete"); err != nil {
		return false, err
	}
	if _, ok := r.t.regencies[id]; !ok {
		return false, nil
	}
	delete(r.t.regencies, id)
	return true, nil
}

func (r *RegencyRepo) ListPage(_ context.Context, provinceID int, query models.PageQuery) (*models.Page[models.Regency], error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.list"); err != nil {
		return nil, err
	}

	var all []models.Regency
	for _, reg := range r.t.regencies {
		if reg.ProvinceID == provinceID {
			all = append(all, r.t.withProvinceName(reg))
		}
	}
	rows := filter(all, query.Search, func(reg models.Regency) []string { return []string{reg.Name, reg.Code} })

	var key func(models.Regency) string
	switch strings.ToLower(strings.TrimSpace(query.SortColumn)) {
	case "code":
		key = func(reg models.Regency) string { return reg.Code }
	case "type":
		key = func(reg models.Regency) string { return string(reg.Type) }
	default:
		key = func(reg models.Regency) string { return reg.Name }
	}
	sortRows(rows, func(a, b models.Regency) int { return strings.Compare(key(a), key(b)) },
		func(reg models.Regency) int { return reg.ID }, query.SortDirection)

	return &models.Page[models.Regency]{Data: window(rows, query), Total: len(all), Filtered: len(rows)}, nil
}

func (r *RegencyRepo) ListByProvince(ctx context.Context, provinceID int) ([]models.Regency, error) {
	page, err := r.ListPage(ctx, provinceID, models.PageQuery{Limit: maxLimit})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (r *RegencyRepo) ExistsByCode(_ context.Context, code string, excludeID int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.exists_by_code"); err != nil {
		return false, err
	}
	for id, reg := range r.t.regencies {
		if id != excludeID && reg.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *RegencyRepo) ExistsByNameInProvince(_ context.Context, name string, provinceID, excludeID int) (bool, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.t.fail("regency.exists_by_name"); err != nil {
		return false, err
	}
	for id, reg := range r.t.regencies {
		if id != excludeID && reg.ProvinceID == provinceID && strings.EqualFold(reg.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// maxLimit lets the unpaged listings see every row.
const maxLimit = 1 << 30

func filter[T any](rows []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if term == "" {
			out = append(out, row)
			continue
		}
		for _, f := range fields(row) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func sortRows[T any](rows []T, cmp func(a, b T) int, id func(T) int, dir string) {
	desc := strings.EqualFold(strings.TrimSpace(dir), models.SortDesc)
	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(rows[i], rows[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return id(rows[i]) < id(rows[j])
	})
}

func window[T any](rows []T, query models.PageQuery) []T {
	offset, limit := query.Offset, query.Limit
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 && limit != maxLimit {
		limit = 100
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) || end < offset {
		end = len(rows)
	}
	return rows[offset:end]
}

package service

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/models"
)

// ProvinceService runs province writes through the validator and keeps the
// cache coherent with them. Single reads and the full listing are served
// from the cache; paged admin listings always hit the database.
type ProvinceService struct {
	repo       ProvinceRepo
	validator  *Validator
	reads      *cache.ReadThrough
	invalidate *cache.Invalidator
}

// NewProvinceService creates a new ProvinceService. Every service writing
// to the same store must share reads.
func NewProvinceService(repo ProvinceRepo, validator *Validator, reads *cache.ReadThrough) *ProvinceService {
	return &ProvinceService{
		repo:       repo,
		validator:  validator,
		reads:      reads,
		invalidate: reads.Invalidator(),
	}
}

// Get returns a province by id, or a NotFoundError.
func (s *ProvinceService) Get(ctx context.Context, id int) (*models.Province, error) {
	p, err := cache.GetOrFetch(ctx, s.reads, cache.ProvinceKey(id), func(ctx context.Context) (models.Province, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return models.Province{}, notFound("province", id, err)
		}
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Detail is Get behind the view permission.
func (s *ProvinceService) Detail(ctx context.Context, actor models.Actor, id int) (*models.Province, error) {
	if err := s.validator.Authorize(actor, ActionViewDetail, 0); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ListAll returns every province ordered by name.
func (s *ProvinceService) ListAll(ctx context.Context) ([]models.Province, error) {
	return cache.GetOrFetch(ctx, s.reads, cache.ProvinceListKey, s.repo.ListAll)
}

// ListPage returns one page of the admin grid.
func (s *ProvinceService) ListPage(ctx context.Context, actor models.Actor, query models.PageQuery) (*models.Page[models.Province], error) {
	if err := s.validator.Authorize(actor, ActionViewList, 0); err != nil {
		return nil, err
	}
	return s.repo.ListPage(ctx, query)
}

// Create validates and inserts a province owned by actor.
func (s *ProvinceService) Create(ctx context.Context, actor models.Actor, in ProvinceInput) (*models.Province, error) {
	in = in.normalized()
	if err := s.validator.ProvinceCreate(ctx, actor, in); err != nil {
		return nil, err
	}

	p := &models.Province{Code: in.Code, Name: in.Name, CreatedBy: actor.ID}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate.ProvinceChanged(ctx, p.ID)

	log.Info().Int("province_id", p.ID).Int("actor_id", actor.ID).Str("code", p.Code).Msg("Province created")
	return p, nil
}

// Update applies the submitted fields of u. Omitted fields keep their
// current values and are validated as such.
func (s *ProvinceService) Update(ctx context.Context, actor models.Actor, id int, u models.ProvinceUpdate) (*models.Province, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("province", id, err)
	}

	u = normalizeProvinceUpdate(u)
	merged := ProvinceInput{Code: existing.Code, Name: existing.Name}
	if u.Code != nil {
		merged.Code = *u.Code
	}
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if err := s.validator.ProvinceUpdate(ctx, actor, existing, merged); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("province", id, sql.ErrNoRows)
	}

	// Regency entries carry the province name.
	if merged.Name != existing.Name {
		s.invalidate.All(ctx)
	} else {
		s.invalidate.ProvinceChanged(ctx, id)
	}

	log.Info().Int("province_id", id).Int("actor_id", actor.ID).Msg("Province updated")
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("province", id, err)
	}
	return updated, nil
}

// Delete removes a province that has no regencies left.
func (s *ProvinceService) Delete(ctx context.Context, actor models.Actor, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound("province", id, err)
	}
	if err := s.validator.ProvinceDelete(ctx, actor, existing); err != nil {
		return err
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		// Gone, or a regency was added after the guard ran.
		return s.deleteRefused(ctx, id)
	}
	s.invalidate.ProvinceDeleted(ctx, id)

	log.Info().Int("province_id", id).Int("actor_id", actor.ID).Msg("Province deleted")
	return nil
}

func (s *ProvinceService) deleteRefused(ctx context.Context, id int) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound("province", id, err)
	}
	count, err := s.repo.CountRegencies(ctx, id)
	if err != nil {
		return err
	}
	return provinceInUse(current, count)
}

func normalizeProvinceUpdate(u models.ProvinceUpdate) models.ProvinceUpdate {
	return models.ProvinceUpdate{Code: trimmed(u.Code), Name: trimmed(u.Name)}
}

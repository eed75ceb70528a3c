package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/models"
)

// RegencyService runs regency writes through the validator and keeps the
// cache coherent with them. Every listing is scoped to one province.
type RegencyService struct {
	repo       RegencyRepo
	provinces  *ProvinceService
	validator  *Validator
	reads      *cache.ReadThrough
	invalidate *cache.Invalidator
}

// NewRegencyService creates a new RegencyService. provinces resolves the
// parent of listings and must have been built over the same reads.
func NewRegencyService(repo RegencyRepo, provinces *ProvinceService, validator *Validator, reads *cache.ReadThrough) *RegencyService {
	return &RegencyService{
		repo:       repo,
		provinces:  provinces,
		validator:  validator,
		reads:      reads,
		invalidate: reads.Invalidator(),
	}
}

// Get returns a regency by id, or a NotFoundError.
func (s *RegencyService) Get(ctx context.Context, id int) (*models.Regency, error) {
	r, err := cache.GetOrFetch(ctx, s.reads, cache.RegencyKey(id), func(ctx context.Context) (models.Regency, error) {
		r, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return models.Regency{}, notFound("regency", id, err)
		}
		return *r, nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Detail is Get behind the view permission.
func (s *RegencyService) Detail(ctx context.Context, actor models.Actor, id int) (*models.Regency, error) {
	if err := s.validator.Authorize(actor, ActionViewDetail, 0); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ListByProvince returns every regency of a province ordered by name.
func (s *RegencyService) ListByProvince(ctx context.Context, provinceID int) ([]models.Regency, error) {
	if _, err := s.provinces.Get(ctx, provinceID); err != nil {
		return nil, err
	}
	return cache.GetOrFetch(ctx, s.reads, cache.RegencyListKey(provinceID), func(ctx context.Context) ([]models.Regency, error) {
		return s.repo.ListByProvince(ctx, provinceID)
	})
}

// ListPage returns one page of a province's regencies for the admin grid.
func (s *RegencyService) ListPage(ctx context.Context, actor models.Actor, provinceID int, query models.PageQuery) (*models.Page[models.Regency], error) {
	if err := s.validator.Authorize(actor, ActionViewList, 0); err != nil {
		return nil, err
	}
	if _, err := s.provinces.Get(ctx, provinceID); err != nil {
		return nil, err
	}
	return s.repo.ListPage(ctx, provinceID, query)
}

// Create validates and inserts a regency under provinceID.
func (s *RegencyService) Create(ctx context.Context, actor models.Actor, provinceID int, in RegencyInput) (*models.Regency, error) {
	in = in.normalized()
	if err := s.validator.RegencyCreate(ctx, actor, provinceID, in); err != nil {
		return nil, err
	}

	r := &models.Regency{
		ProvinceID: provinceID,
		Code:       in.Code,
		Name:       in.Name,
		Type:       models.RegencyType(in.Type),
		CreatedBy:  actor.ID,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate.RegencyChanged(ctx, r.ID, true, provinceID)

	log.Info().Int("regency_id", r.ID).Int("province_id", provinceID).Int("actor_id", actor.ID).Msg("Regency created")
	return s.fresh(ctx, r.ID)
}

// Update applies the submitted fields of u. The owning province cannot change.
func (s *RegencyService) Update(ctx context.Context, actor models.Actor, id int, u models.RegencyUpdate) (*models.Regency, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("regency", id, err)
	}

	u = normalizeRegencyUpdate(u)
	merged := RegencyInput{Code: existing.Code, Name: existing.Name, Type: string(existing.Type)}
	if u.Code != nil {
		merged.Code = *u.Code
	}
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Type != nil {
		merged.Type = string(*u.Type)
	}
	if err := s.validator.RegencyUpdate(ctx, actor, existing, merged); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("regency", id, sql.ErrNoRows)
	}
	s.invalidate.RegencyChanged(ctx, id, false, existing.ProvinceID)

	log.Info().Int("regency_id", id).Int("actor_id", actor.ID).Msg("Regency updated")
	return s.fresh(ctx, id)
}

// Delete removes a regency.
func (s *RegencyService) Delete(ctx context.Context, actor models.Actor, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound("regency", id, err)
	}
	if err := s.validator.RegencyDelete(ctx, actor, existing); err != nil {
		return err
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("regency", id, sql.ErrNoRows)
	}
	s.invalidate.RegencyChanged(ctx, id, true, existing.ProvinceID)

	log.Info().Int("regency_id", id).Int("province_id", existing.ProvinceID).Int("actor_id", actor.ID).Msg("Regency deleted")
	return nil
}

// fresh reads a just-written regency from storage, bypassing the cache.
func (s *RegencyService) fresh(ctx context.Context, id int) (*models.Regency, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("regency", id, err)
	}
	return r, nil
}

func normalizeRegencyUpdate(u models.RegencyUpdate) models.RegencyUpdate {
	out := models.RegencyUpdate{Code: trimmed(u.Code), Name: trimmed(u.Name)}
	if u.Type != nil {
		t := models.RegencyType(strings.ToLower(strings.TrimSpace(string(*u.Type))))
		out.Type = &t
	}
	return out
}

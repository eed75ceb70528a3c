package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/database"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/repository"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

//go:embed demo_data.json
var demoDataJSON []byte

type demoProvince struct {
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Regencies []demoRegency `json:"regencies"`
}

type demoRegency struct {
	Code string             `json:"code"`
	Name string             `json:"name"`
	Type models.RegencyType `json:"type"`
}

// TxRunner runs fn with repositories bound to a single transaction. The
// transaction commits only when fn returns nil.
type TxRunner func(ctx context.Context, fn func(provinces ProvinceRepo, regencies RegencyRepo) error) error

// SQLTxRunner is the TxRunner backed by PostgreSQL.
func SQLTxRunner(db *sqlx.DB, provinces *repository.ProvinceRepository, regencies *repository.RegencyRepository) TxRunner {
	return func(ctx context.Context, fn func(ProvinceRepo, RegencyRepo) error) error {
		return database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
			return fn(provinces.WithTx(tx), regencies.WithTx(tx))
		})
	}
}

// DemoResult summarizes a demo load.
type DemoResult struct {
	Deleted   int `json:"deletedProvinces"`
	Provinces int `json:"provinces"`
	Regencies int `json:"regencies"`
}

// DemoService seeds the bundled sample territory. The whole load is one
// transaction: any failing row leaves the database untouched.
type DemoService struct {
	provinces  ProvinceRepo
	runTx      TxRunner
	validator  *Validator
	invalidate *cache.Invalidator
}

// NewDemoService creates a new DemoService.
func NewDemoService(provinces ProvinceRepo, runTx TxRunner, validator *Validator, reads *cache.ReadThrough) *DemoService {
	return &DemoService{
		provinces:  provinces,
		runTx:      runTx,
		validator:  validator,
		invalidate: reads.Invalidator(),
	}
}

// Load inserts the demo data. Without reset it refuses to run on a
// non-empty database; with reset it first deletes every province.
func (s *DemoService) Load(ctx context.Context, actor models.Actor, reset bool) (*DemoResult, error) {
	if err := s.validator.Authorize(actor, ActionImport, 0); err != nil {
		return nil, err
	}

	var data []demoProvince
	if err := json.Unmarshal(demoDataJSON, &data); err != nil {
		return nil, fmt.Errorf("decode demo data: %w", err)
	}

	if !reset {
		page, err := s.provinces.ListPage(ctx, models.PageQuery{Limit: 1})
		if err != nil {
			return nil, err
		}
		if page.Total > 0 {
			verr := utils.NewValidationError()
			verr.Add("reset", "territory data already exists; load again with reset to replace it")
			return nil, verr
		}
	}

	result := &DemoResult{}
	err := s.runTx(ctx, func(provinces ProvinceRepo, regencies RegencyRepo) error {
		if reset {
			n, err := provinces.DeleteAll(ctx)
			if err != nil {
				return err
			}
			result.Deleted = n
		}

		for _, dp := range data {
			p := &models.Province{Code: dp.Code, Name: dp.Name, CreatedBy: actor.ID}
			if err := provinces.Create(ctx, p); err != nil {
				return fmt.Errorf("province %s: %w", dp.Code, err)
			}
			result.Provinces++

			for _, dr := range dp.Regencies {
				r := &models.Regency{ProvinceID: p.ID, Code: dr.Code, Name: dr.Name, Type: dr.Type, CreatedBy: actor.ID}
				if err := regencies.Create(ctx, r); err != nil {
					return fmt.Errorf("regency %s: %w", dr.Code, err)
				}
				result.Regencies++
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("actor_id", actor.ID).Msg("Demo data load rolled back")
		return nil, err
	}

	s.invalidate.All(ctx)
	log.Info().
		Int("actor_id", actor.ID).
		Int("provinces", result.Provinces).
		Int("regencies", result.Regencies).
		Bool("reset", reset).
		Msg("Demo data loaded")
	return result, nil
}

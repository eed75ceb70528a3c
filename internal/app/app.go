// Package app assembles repositories, cache and services. The API server
// and the operator CLI share it so both run the same write paths.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/config"
	"github.com/GTDGit/wilayah_api/internal/repository"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// Services bundles everything built on top of the database and cache.
type Services struct {
	Store     cache.Store
	Reads     *cache.ReadThrough
	Validator *service.Validator
	Provinces *service.ProvinceService
	Regencies *service.RegencyService
	Imports   *service.ImportService
	Demo      *service.DemoService
	Exports   *service.ExportService
	AdminAuth *service.AdminAuthService
}

// NewServices wires repositories over db and services over store. can
// decides permissions; signer may be nil when no tokens are issued.
func NewServices(db *sqlx.DB, store cache.Store, can service.Authorizer, signer *utils.JWTSigner) *Services {
	provinceRepo := repository.NewProvinceRepository(db)
	regencyRepo := repository.NewRegencyRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	validator := service.NewValidator(provinceRepo, regencyRepo, can)
	reads := cache.NewReadThrough(store)
	provinces := service.NewProvinceService(provinceRepo, validator, reads)
	regencies := service.NewRegencyService(regencyRepo, provinces, validator, reads)

	return &Services{
		Store:     store,
		Reads:     reads,
		Validator: validator,
		Provinces: provinces,
		Regencies: regencies,
		Imports:   service.NewImportService(provinceRepo, validator, reads),
		Demo:      service.NewDemoService(provinceRepo, service.SQLTxRunner(db, provinceRepo, regencyRepo), validator, reads),
		Exports:   service.NewExportService(provinces, regencies, validator),
		AdminAuth: service.NewAdminAuthService(adminRepo, signer),
	}
}

// Cache is an opened cache backend and the function releasing it.
type Cache struct {
	Store cache.Store
	Close func()
}

// OpenCache builds the backend selected by cfg.Cache.Driver. An unreachable
// Redis is an error unless fallback is set, in which case the in-process
// store is used instead.
func OpenCache(cfg *config.Config, fallback bool) (*Cache, error) {
	if cfg.Cache.Driver == config.CacheDriverRedis {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err == nil {
			log.Info().Str("group", cfg.Cache.Group).Msg("redis cache connected")
			return &Cache{
				Store: cache.NewRedisStore(redisClient, cfg.Cache.Group, cfg.Cache.TTL),
				Close: func() { _ = redisClient.Close() },
			}, nil
		}
		if !fallback {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-process cache")
	}

	mem := cache.NewMemoryStore(cfg.Cache.MemoryCapacity, cfg.Cache.TTL)
	mem.Start()
	log.Info().Int("capacity", cfg.Cache.MemoryCapacity).Msg("in-process cache started")
	return &Cache{Store: mem, Close: mem.Stop}, nil
}

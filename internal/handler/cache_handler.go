package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// CacheHandler exposes cache maintenance to administrators.
type CacheHandler struct {
	validator  *service.Validator
	invalidate *cache.Invalidator
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(validator *service.Validator, reads *cache.ReadThrough) *CacheHandler {
	return &CacheHandler{validator: validator, invalidate: reads.Invalidator()}
}

// Flush handles POST /v1/admin/cache/flush. It needs the same right as a
// bulk import.
func (h *CacheHandler) Flush(c *gin.Context) {
	a := actor(c)
	if err := h.validator.Authorize(a, service.ActionImport, 0); err != nil {
		respondError(c, err)
		return
	}
	if !h.invalidate.All(c.Request.Context()) {
		utils.Error(c, 503, "CACHE_UNAVAILABLE", "Cache backend unavailable; entries expire after their TTL")
		return
	}
	log.Info().Int("actor_id", a.ID).Msg("Cache flushed by admin")
	utils.Success(c, 200, "Cache flushed", nil)
}

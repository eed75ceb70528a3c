package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Territory *TerritoryHandler
	Province  *ProvinceHandler
	Regency   *RegencyHandler
	Cache     *CacheHandler
}

// SetupRoutes registers all routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public territory reads, served from cache
	territory := router.Group("/v1/territory")
	{
		territory.GET("/province", handlers.Territory.GetProvinces)
		territory.GET("/province/:id", handlers.Territory.GetProvince)
		territory.GET("/province/:id/regency", handlers.Territory.GetRegenciesByProvince)
		territory.GET("/regency/:id", handlers.Territory.GetRegency)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/auth/me", handlers.Auth.Me)

		// Province Management
		admin.GET("/provinces", handlers.Province.List)
		admin.POST("/provinces", handlers.Province.Create)
		admin.POST("/provinces/import", handlers.Province.Import)
		admin.POST("/provinces/demo", handlers.Province.LoadDemo)
		admin.GET("/provinces/export", handlers.Province.Export)
		admin.GET("/provinces/:id", handlers.Province.Get)
		admin.PUT("/provinces/:id", handlers.Province.Update)
		admin.DELETE("/provinces/:id", handlers.Province.Delete)

		// Regency Management
		admin.GET("/provinces/:id/regencies", handlers.Regency.List)
		admin.POST("/provinces/:id/regencies", handlers.Regency.Create)
		admin.GET("/provinces/:id/regencies/export", handlers.Regency.Export)
		admin.GET("/regencies/:id", handlers.Regency.Get)
		admin.PUT("/regencies/:id", handlers.Regency.Update)
		admin.DELETE("/regencies/:id", handlers.Regency.Delete)

		admin.POST("/cache/flush", handlers.Cache.Flush)
	}
}

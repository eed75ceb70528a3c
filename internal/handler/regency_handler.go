package handler

import (
	"bytes"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// RegencyHandler serves the admin regency endpoints. Listing and creation
// are nested under their province.
type RegencyHandler struct {
	regencies *service.RegencyService
	exports   *service.ExportService
}

// NewRegencyHandler constructs a RegencyHandler.
func NewRegencyHandler(regencies *service.RegencyService, exports *service.ExportService) *RegencyHandler {
	return &RegencyHandler{regencies: regencies, exports: exports}
}

// List handles GET /v1/admin/provinces/:id/regencies
func (h *RegencyHandler) List(c *gin.Context) {
	provinceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := parseListRequest(c)
	page, err := h.regencies.ListPage(c.Request.Context(), actor(c), provinceID, req.Query)
	if err != nil {
		if req.DataTables {
			respondGridError(c, req.Draw, err)
			return
		}
		respondError(c, err)
		return
	}
	respondPage(c, req, page, "Regencies retrieved")
}

// Create handles POST /v1/admin/provinces/:id/regencies
func (h *RegencyHandler) Create(c *gin.Context) {
	provinceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.RegencyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	r, err := h.regencies.Create(c.Request.Context(), actor(c), provinceID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, "Regency created", r)
}

// Get handles GET /v1/admin/regencies/:id
func (h *RegencyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.regencies.Detail(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Regency retrieved", r)
}

// Update handles PUT /v1/admin/regencies/:id
func (h *RegencyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.RegencyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Empty() {
		utils.Error(c, 400, "INVALID_REQUEST", "No fields to update")
		return
	}
	r, err := h.regencies.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Regency updated", r)
}

// Delete handles DELETE /v1/admin/regencies/:id
func (h *RegencyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.regencies.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Regency deleted", gin.H{"id": id})
}

// Export handles GET /v1/admin/provinces/:id/regencies/export
func (h *RegencyHandler) Export(c *gin.Context) {
	provinceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.exports.Regencies(c.Request.Context(), actor(c), provinceID, &buf); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("regencies-%d.xlsx", provinceID), buf.Bytes())
}

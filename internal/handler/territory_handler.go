package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// TerritoryHandler serves the public read-only territory endpoints. Every
// read goes through the services' cache.
type TerritoryHandler struct {
	provinces *service.ProvinceService
	regencies *service.RegencyService
}

// NewTerritoryHandler creates a new TerritoryHandler
func NewTerritoryHandler(provinces *service.ProvinceService, regencies *service.RegencyService) *TerritoryHandler {
	return &TerritoryHandler{provinces: provinces, regencies: regencies}
}

// TerritoryResponse is the standard response structure for territory endpoints
type TerritoryResponse struct {
	Success bool                `json:"success"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Error   *TerritoryErrorInfo `json:"error,omitempty"`
	Meta    TerritoryMeta       `json:"meta"`
}

// TerritoryErrorInfo contains error details
type TerritoryErrorInfo struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

// TerritoryMeta contains metadata for the response
type TerritoryMeta struct {
	Total        int    `json:"total,omitempty"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	ProvinceName string `json:"provinceName,omitempty"`
	RequestID    string `json:"requestId"`
	Timestamp    string `json:"timestamp"`
}

// GetProvinces returns all provinces
// GET /v1/territory/province
func (h *TerritoryHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.provinces.ListAll(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response := make([]models.ProvinceResponse, 0, len(provinces))
	for _, p := range provinces {
		response = append(response, p.ToResponse())
	}

	h.ok(c, "Successfully retrieved provinces", response, TerritoryMeta{Total: len(response)})
}

// GetProvince returns one province
// GET /v1/territory/province/:id
func (h *TerritoryHandler) GetProvince(c *gin.Context) {
	id, ok := h.id(c, "Province")
	if !ok {
		return
	}

	p, err := h.provinces.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	h.ok(c, "Successfully retrieved province", p.ToResponse(), TerritoryMeta{})
}

// GetRegenciesByProvince returns all regencies of a province
// GET /v1/territory/province/:id/regency
func (h *TerritoryHandler) GetRegenciesByProvince(c *gin.Context) {
	id, ok := h.id(c, "Province")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	province, err := h.provinces.Get(ctx, id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	regencies, err := h.regencies.ListByProvince(ctx, id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response := make([]models.RegencyResponse, 0, len(regencies))
	for _, r := range regencies {
		item := r.ToResponse()
		item.ProvinceName = ""
		response = append(response, item)
	}

	h.ok(c, "Successfully retrieved regencies", response, TerritoryMeta{
		Total:        len(response),
		ProvinceCode: province.Code,
		ProvinceName: province.Name,
	})
}

// GetRegency returns one regency
// GET /v1/territory/regency/:id
func (h *TerritoryHandler) GetRegency(c *gin.Context) {
	id, ok := h.id(c, "Regency")
	if !ok {
		return
	}

	r, err := h.regencies.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	h.ok(c, "Successfully retrieved regency", r.ToResponse(), TerritoryMeta{})
}

// Helper functions

func (h *TerritoryHandler) id(c *gin.Context, entity string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", entity+" id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *TerritoryHandler) ok(c *gin.Context, message string, data interface{}, meta TerritoryMeta) {
	meta.RequestID = h.requestID(c)
	meta.Timestamp = time.Now().Format(time.RFC3339)
	c.JSON(http.StatusOK, TerritoryResponse{
		Success: true,
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func (h *TerritoryHandler) serviceError(c *gin.Context, err error) {
	if utils.IsNotFound(err) {
		h.errorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	logFailure(c, err)
	h.errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "operation failed")
}

func (h *TerritoryHandler) requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return "req_ter_" + uuid.New().String()[:8]
}

func (h *TerritoryHandler) errorResponse(c *gin.Context, statusCode int, errorType, details string) {
	c.JSON(statusCode, TerritoryResponse{
		Success: false,
		Code:    statusCode,
		Message: details,
		Error: &TerritoryErrorInfo{
			Type:    errorType,
			Details: details,
		},
		Meta: TerritoryMeta{
			RequestID: h.requestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

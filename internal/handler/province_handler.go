package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportBytes  = 10 << 20
)

// ProvinceHandler serves the admin province endpoints.
type ProvinceHandler struct {
	provinces *service.ProvinceService
	imports   *service.ImportService
	demo      *service.DemoService
	exports   *service.ExportService
}

// NewProvinceHandler constructs a ProvinceHandler.
func NewProvinceHandler(provinces *service.ProvinceService, imports *service.ImportService, demo *service.DemoService, exports *service.ExportService) *ProvinceHandler {
	return &ProvinceHandler{provinces: provinces, imports: imports, demo: demo, exports: exports}
}

// List handles GET /v1/admin/provinces
func (h *ProvinceHandler) List(c *gin.Context) {
	req := parseListRequest(c)
	page, err := h.provinces.ListPage(c.Request.Context(), actor(c), req.Query)
	if err != nil {
		if req.DataTables {
			respondGridError(c, req.Draw, err)
			return
		}
		respondError(c, err)
		return
	}
	respondPage(c, req, page, "Provinces retrieved")
}

// Get handles GET /v1/admin/provinces/:id
func (h *ProvinceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.provinces.Detail(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Province retrieved", p)
}

// Create handles POST /v1/admin/provinces
func (h *ProvinceHandler) Create(c *gin.Context) {
	var req service.ProvinceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p, err := h.provinces.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, "Province created", p)
}

// Update handles PUT /v1/admin/provinces/:id
func (h *ProvinceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ProvinceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Empty() {
		utils.Error(c, 400, "INVALID_REQUEST", "No fields to update")
		return
	}
	p, err := h.provinces.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Province updated", p)
}

// Delete handles DELETE /v1/admin/provinces/:id
func (h *ProvinceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.provinces.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Province deleted", gin.H{"id": id})
}

// Import handles POST /v1/admin/provinces/import. The body is either a
// multipart xlsx upload in field "file" or JSON {"rows": [{code, name}]}.
func (h *ProvinceHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	rows, err := importRows(c)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.imports.ImportProvinces(c.Request.Context(), actor(c), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, fmt.Sprintf("Imported %d provinces", result.Imported), result)
}

func importRows(c *gin.Context) ([]service.ProvinceRow, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("file could not be read")
		}
		defer f.Close()
		rows, err := service.ReadProvinceRows(f)
		if err != nil {
			return nil, errors.New("file is not a valid xlsx workbook")
		}
		return rows, nil
	}

	var req struct {
		Rows []service.ProvinceRow `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.New("invalid request body")
	}
	return req.Rows, nil
}

// LoadDemo handles POST /v1/admin/provinces/demo?reset=true
func (h *ProvinceHandler) LoadDemo(c *gin.Context) {
	reset, err := strconv.ParseBool(c.DefaultQuery("reset", "false"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "reset must be a boolean")
		return
	}
	result, err := h.demo.Load(c.Request.Context(), actor(c), reset)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, "Demo data loaded", result)
}

// Export handles GET /v1/admin/provinces/export
func (h *ProvinceHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exports.Provinces(c.Request.Context(), actor(c), &buf); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, "provinces.xlsx", buf.Bytes())
}

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

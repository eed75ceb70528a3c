package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/middleware"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// listRequest is a grid request in either dialect. Grid requests carry a
// draw counter that must be echoed back; REST requests are 1-based pages.
type listRequest struct {
	Query      models.PageQuery
	Page       int
	DataTables bool
	Draw       int
}

// parseListRequest reads REST params (page, limit, search, sort, dir) or,
// when draw is present, DataTables params (start, length, search[value],
// order[0][column], order[0][dir], columns[i][data]).
func parseListRequest(c *gin.Context) listRequest {
	if _, ok := c.GetQuery("draw"); ok {
		return parseGridRequest(c)
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := clampLimit(queryInt(c, "limit", defaultPageSize))
	return listRequest{
		Page: page,
		Query: models.PageQuery{
			Offset:        (page - 1) * limit,
			Limit:         limit,
			Search:        strings.TrimSpace(c.Query("search")),
			SortColumn:    c.Query("sort"),
			SortDirection: sortDirection(c.Query("dir")),
		},
	}
}

func parseGridRequest(c *gin.Context) listRequest {
	start := queryInt(c, "start", 0)
	if start < 0 {
		start = 0
	}
	// DataTables asks for every row with -1; serve the largest page instead.
	length := queryInt(c, "length", defaultPageSize)
	if length < 0 {
		length = maxPageSize
	}
	limit := clampLimit(length)

	var column string
	if idx, err := strconv.Atoi(c.Query("order[0][column]")); err == nil && idx >= 0 {
		column = c.Query("columns[" + strconv.Itoa(idx) + "][data]")
	}

	return listRequest{
		DataTables: true,
		Draw:       queryInt(c, "draw", 0),
		Page:       start/limit + 1,
		Query: models.PageQuery{
			Offset:        start,
			Limit:         limit,
			Search:        strings.TrimSpace(c.Query("search[value]")),
			SortColumn:    column,
			SortDirection: sortDirection(c.Query("order[0][dir]")),
		},
	}
}

// respondPage answers a list request in the dialect it was asked in.
func respondPage[T any](c *gin.Context, req listRequest, page *models.Page[T], message string) {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	if req.DataTables {
		utils.DataTables(c, req.Draw, page.Total, page.Filtered, data)
		return
	}
	utils.SuccessWithPagination(c, 200, message, data, req.Page, req.Query.Limit, page.Total, page.Filtered)
}

// clampLimit treats non-positive sizes as the default and caps the rest.
func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}

func sortDirection(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), models.SortDesc) {
		return models.SortDesc
	}
	return models.SortAsc
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// actor returns the caller set by the JWT middleware. A missing actor is the
// zero Actor, which holds no role and is denied by the policy.
func actor(c *gin.Context) models.Actor {
	a, _ := middleware.GetActor(c)
	return a
}

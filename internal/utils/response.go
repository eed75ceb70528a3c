package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds pagination metadata for list responses.
// TotalItems ignores the search filter, FilteredItems applies it.
type Pagination struct {
	Page          int `json:"page"`
	Limit         int `json:"limit"`
	TotalItems    int `json:"totalItems"`
	FilteredItems int `json:"filteredItems"`
	TotalPages    int `json:"totalPages"`
}

// DataTablesResponse is the legacy server-side DataTables envelope.
type DataTablesResponse struct {
	Draw            int         `json:"draw"`
	RecordsTotal    int         `json:"recordsTotal"`
	RecordsFiltered int         `json:"recordsFiltered"`
	Data            interface{} `json:"data"`
	Error           string      `json:"error,omitempty"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// SuccessWithPagination writes a success response with pagination metadata.
// Pages are counted over filteredItems.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems, filteredItems int) {
	// safety defaults
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	totalPages := (filteredItems + limit - 1) / limit
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
			Pagination: &Pagination{
				Page:          page,
				Limit:         limit,
				TotalItems:    totalItems,
				FilteredItems: filteredItems,
				TotalPages:    totalPages,
			},
		},
	})
}

// DataTables writes the legacy draw/recordsTotal/recordsFiltered/data envelope.
func DataTables(c *gin.Context, draw, total, filtered int, data interface{}) {
	c.JSON(200, DataTablesResponse{
		Draw:            draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            data,
	})
}

// DataTablesError reports a failed grid request in the DataTables envelope,
// which renders the error text in the table body.
func DataTablesError(c *gin.Context, code, draw int, message string) {
	c.JSON(code, DataTablesResponse{
		Draw:  draw,
		Data:  []interface{}{},
		Error: message,
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithFields(c, code, errCode, message, nil)
}

// ErrorWithFields writes an error response carrying field-keyed messages.
func ErrorWithFields(c *gin.Context, code int, errCode, message string, fields map[string]string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error: &ErrorInfo{
			Code:    errCode,
			Message: message,
			Fields:  fields,
		},
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}

// NowISO returns the current time in ISO 8601 format with WIB timezone.
func NowISO() string {
	wib := time.FixedZone("WIB", 7*3600)
	return time.Now().In(wib).Format("2006-01-02T15:04:05+07:00")
}

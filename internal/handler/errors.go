package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/utils"
)

// errorStatus maps a service error onto an HTTP status, an API error code
// and the message safe to show the caller. fields is set for validation
// failures only.
func errorStatus(err error) (status int, code, message string, fields map[string]string) {
	var (
		verr *utils.ValidationError
		perr *utils.PermissionError
		nf   *utils.NotFoundError
		dep  *utils.DependencyError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", verr.Fields
	case errors.As(err, &perr):
		return http.StatusForbidden, "FORBIDDEN", perr.Message, nil
	case errors.As(err, &nf):
		return http.StatusNotFound, "NOT_FOUND", nf.Error(), nil
	case errors.As(err, &dep):
		return http.StatusConflict, "HAS_DEPENDENCIES", dep.Message, nil
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "operation failed", nil
	}
}

// respondError writes err in the standard envelope. Unexpected errors are
// logged here; their text never reaches the client.
func respondError(c *gin.Context, err error) {
	status, code, message, fields := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logFailure(c, err)
	}
	utils.ErrorWithFields(c, status, code, message, fields)
}

// respondGridError writes err in the DataTables envelope.
func respondGridError(c *gin.Context, draw int, err error) {
	status, _, message, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logFailure(c, err)
	}
	utils.DataTablesError(c, status, draw, message)
}

func logFailure(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Request failed")
}

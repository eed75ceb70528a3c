package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/utils"
)

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation     = pq.ErrorCode("23505")
	pgForeignKeyViolation = pq.ErrorCode("23503")
)

// storageError logs err with its constraint context and hides it behind a
// PersistenceError.
func storageError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		log.Error().
			Err(err).
			Str("op", op).
			Str("pg_code", string(pqErr.Code)).
			Str("constraint", pqErr.Constraint).
			Msg("Storage constraint violated")
	} else {
		log.Error().Err(err).Str("op", op).Msg("Storage operation failed")
	}
	return utils.Persistence(op, err)
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// IsForeignKeyViolation reports whether err was caused by a missing parent row.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}

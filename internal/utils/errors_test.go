package utils

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_CollectsFirstMessagePerField(t *testing.T) {
	verr := NewValidationError()
	assert.True(t, verr.Empty())
	assert.Nil(t, verr.OrNil())

	verr.Add("name", "Name is required")
	verr.Add("name", "Name must not exceed 100 characters")
	verr.Add("code", "Code already exists")

	assert.False(t, verr.Empty())
	assert.True(t, verr.Has("name"))
	assert.Equal(t, "Name is required", verr.Fields["name"])
	assert.Equal(t, "validation failed: code: Code already exists; name: Name is required", verr.Error())
	assert.Error(t, verr.OrNil())
}

func TestPersistenceError_HidesCause(t *testing.T) {
	err := fmt.Errorf("create province: %w", Persistence("province.create", sql.ErrConnDone))

	var perr *PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "operation failed", perr.Error())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", &NotFoundError{Entity: "province", ID: 7})))
	assert.False(t, IsNotFound(&DependencyError{Message: "blocked"}))
	assert.Equal(t, "province with id 7 not found", (&NotFoundError{Entity: "province", ID: 7}).Error())
}

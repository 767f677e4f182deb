package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	id := uuid.MustParse("8c1b2d4e-0000-4000-8000-000000000001")
	err := NewNotFoundError("vendor bill", id)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "vendor bill 8c1b2d4e-0000-4000-8000-000000000001 not found", err.Error())
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to load bill: %w", NewValidationError("amount must be positive"))

	assert.True(t, errors.Is(err, ErrInvalidInput))

	var domainErr *DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
}

func TestNewPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("insert vendor payment", cause)

	assert.Equal(t, CodePersistence, err.Code)
	assert.Equal(t, "failed to insert vendor payment: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError(CodeAlreadyIntegrated, "expense %d already linked", 7)

	assert.ErrorIs(t, err, ErrAlreadyIntegrated)
	assert.Equal(t, "expense 7 already linked", err.Message)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeExceedsOutstanding,
		CodeOf(fmt.Errorf("vendor step: %w", NewConflictError(CodeExceedsOutstanding, "too much"))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))

	assert.True(t, HasCode(ErrNotFound, CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
	assert.False(t, HasCode(ErrNotFound, CodeValidation))
}

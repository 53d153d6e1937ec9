package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	ctx := SetUserContext(context.Background(), 42, "a@example.com", "CUSTOMER")

	id, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@example.com", GetUserEmailFromContext(ctx))
	assert.Equal(t, "CUSTOMER", GetUserRoleFromContext(ctx))
	assert.False(t, IsAdmin(ctx))

	admin := SetUserContext(context.Background(), 1, "ops@example.com", RoleAdmin)
	assert.True(t, IsAdmin(admin))
}

func TestUserContext_Anonymous(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, GetUserRoleFromContext(ctx))
	assert.False(t, IsAdmin(ctx))
}

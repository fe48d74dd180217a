package middleware

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey and rolesKey store the authenticated caller in the request context.
const (
	userIDKey = contextKey("userID")
	rolesKey  = contextKey("roles")
)

// WithIdentity returns a copy of ctx carrying the caller's user ID and roles.
func WithIdentity(ctx context.Context, userID string, roles []domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, rolesKey, roles)
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetRolesFromContext retrieves the authenticated caller's roles. A caller without roles gets nil.
func GetRolesFromContext(c *gin.Context) []domain.Role {
	roles, _ := c.Request.Context().Value(rolesKey).([]domain.Role)
	return roles
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// userIDKey is the key used to store the authenticated user's ID in the Gin context.
const userIDKey = contextKey("userID")

// userRoleKey is the key used to store the authenticated user's role in the Gin context.
const userRoleKey = contextKey("userRole")

// userNameKey is the key used to store the authenticated user's display name in the Gin context.
const userNameKey = contextKey("userName")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}

// GetActorFromContext builds the workflow actor from the authenticated user's
// identity stored by the auth middleware. Services receive the actor explicitly
// rather than reading ambient session state.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Actor{}, false
	}

	roleVal, exists := c.Get(string(userRoleKey))
	if !exists {
		return domain.Actor{}, false
	}
	role, ok := roleVal.(domain.UserRole)
	if !ok || !role.IsValid() {
		return domain.Actor{}, false
	}

	name := ""
	if nameVal, exists := c.Get(string(userNameKey)); exists {
		name, _ = nameVal.(string)
	}

	return domain.Actor{UserID: userID, Name: name, Role: role}, true
}

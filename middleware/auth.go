package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/habitboard/habitboard/authz"
	"github.com/habitboard/habitboard/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenKey stores the raw bearer token for advisory role display.
	ContextTokenKey = "token"
	// ContextRolesKey stores the verified user_roles claim map.
	ContextRolesKey = "user_roles"
)

// HabitResource is the resource name roles are resolved against.
const HabitResource = "habit"

// AuthRequired ensures the request is authenticated via a verified JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Set(ContextRolesKey, claims.UserRoles)
		ctx.Next()
	}
}

// RequireHabitManager gates write and detail routes to admin/manager roles.
// Unlike the advisory client-side decode, this reads the VERIFIED claim map
// placed in the context by AuthRequired; the same rule is enforced again at
// the store layer regardless of what any client believes its role is.
func RequireHabitManager() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := VerifiedRole(ctx, HabitResource)
		if !role.CanManage() {
			utils.Error(ctx, http.StatusForbidden, 40301, "insufficient role")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// VerifiedRole resolves the caller's role for a resource from the verified
// claims set by AuthRequired. Missing context yields RoleNone.
func VerifiedRole(ctx *gin.Context, resource string) authz.Role {
	value, exists := ctx.Get(ContextRolesKey)
	if !exists {
		return authz.RoleNone
	}
	roles, ok := value.(map[string]string)
	if !ok {
		return authz.RoleNone
	}
	return authz.RoleFromMap(roles, resource)
}

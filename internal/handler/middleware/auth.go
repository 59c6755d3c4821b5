package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/jwt"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxHolderIDKey   = "holder_id"
	ctxHolderRoleKey = "holder_role"
)

var roleHierarchy = map[jwt.Role]int{
	jwt.RoleHolder: 1,
	jwt.RoleAdmin:  2,
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		holderID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxHolderIDKey, holderID)
		c.Set(ctxHolderRoleKey, role)
		c.Next()
	}
}

// RequireRoleAtLeast must run after RequireAuth.
func (m *AuthMiddleware) RequireRoleAtLeast(minRole jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetHolderRole(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !hasMinimumRole(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func hasMinimumRole(role, minRole jwt.Role) bool {
	level, ok := roleHierarchy[role]
	minLevel, minOK := roleHierarchy[minRole]
	return ok && minOK && level >= minLevel
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

func GetHolderID(c *gin.Context) (uuid.UUID, bool) {
	holderID, exists := c.Get(ctxHolderIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := holderID.(uuid.UUID)
	return id, ok
}

func GetHolderRole(c *gin.Context) (jwt.Role, bool) {
	holderRole, exists := c.Get(ctxHolderRoleKey)
	if !exists {
		return "", false
	}

	role, ok := holderRole.(jwt.Role)
	return role, ok
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"

	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// AuthMiddleware admits requests carrying a valid access token and stores
// the caller on the context.
func AuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		raw := strings.TrimSpace(parts[1])
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is empty"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(raw, KindAccess)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, ErrInvalidTokenType):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or malformed token"})
			}
			c.Abort()
			return
		}

		SetPrincipal(c, claims.Principal())
		c.Set(ctxUserEmail, claims.Email)

		c.Next()
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxUserRole)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User role not found"})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid role type"})
			c.Abort()
			return
		}

		if roleStr != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

func GetPrincipal(c *gin.Context) (Principal, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Principal{}, false
	}
	role, _ := c.Get(ctxUserRole)
	roleStr, _ := role.(string)
	return Principal{UserID: id, Role: roleStr}, true
}

// SetPrincipal stores p on the context the way AuthMiddleware does.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxUserRole, p.Role)
}

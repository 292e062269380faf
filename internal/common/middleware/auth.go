package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rifas-el-negro-backend/internal/common/auth"
)

const (
	// AuthCookie is the cookie the web client stores its session token in.
	AuthCookie = "auth-token"

	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// Authenticate parses the auth-token cookie (or a Bearer header) and, when
// valid, stores the caller's identity in the request context. It never
// aborts; RequireAuth/RequireAdmin decide whether identity is mandatory.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AuthCookie)
		if err != nil || token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}
		if c.GetString(ContextUserRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's id. The second return is
// false on unauthenticated requests; handlers behind RequireAuth can ignore it.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

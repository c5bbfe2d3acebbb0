package middleware

import (
	"net/http"
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthRequired resolves the Bearer credential and injects the caller into the context
func AuthRequired(creds auth.Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperr.New(apperr.Unauthenticated, "Authorization header required (Bearer <token>)"))
			return
		}
		p, err := creds.Resolve(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abort(c, apperr.New(apperr.Unauthenticated, "Authentication required"))
			return
		}
		if err := auth.Require(p, roles...); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the caller set by AuthRequired
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := val.(auth.Principal)
	return p, ok
}

func abort(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.Message(err), "kind": kind})
}

// CORS allows browser clients from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

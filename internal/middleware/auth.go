package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/auth"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
)

const ContextSession = "session"

// SessionResolver resolves a bearer token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (auth.Session, error)
}

func AuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "expected a bearer token")
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "session is invalid or expired")
			c.Abort()
			return
		}

		c.Set(ContextSession, sess)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))

		c.Next()
	}
}

// RequireRole lets only sessions with one of roles through.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := Session(c)
		if !ok {
			httperr.Unauthorized(c, "unauthenticated", "login required")
			c.Abort()
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, "forbidden", "insufficient role")
		c.Abort()
	}
}

// Session returns the session set by AuthMiddleware.
func Session(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return auth.Session{}, false
	}
	sess, ok := v.(auth.Session)
	return sess, ok
}

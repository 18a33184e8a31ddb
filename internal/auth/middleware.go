package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourname/habittracker/internal/response"
	"github.com/yourname/habittracker/internal/storage"
)

// Middleware resolves the session cookie into a user and stores it in the
// gin context under "user". Requests without a live session are rejected
// with 401.
func Middleware(sessions storage.SessionRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			user, err := sessions.GetUserBySession(c.Request.Context(), HashSessionToken(secret, token), time.Now())
			if err == nil {
				c.Set("user", user)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
	}
}

// OptionalMiddleware resolves the session when present but lets anonymous
// requests through with no user set. The /api/auth/me probe needs this.
func OptionalMiddleware(sessions storage.SessionRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			user, err := sessions.GetUserBySession(c.Request.Context(), HashSessionToken(secret, token), time.Now())
			if err == nil {
				c.Set("user", user)
			}
		}
		c.Next()
	}
}

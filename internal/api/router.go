package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourname/habittracker/internal/auth"
)

// NewRouter wires the HTTP surface: open auth endpoints, an
// optionally-authenticated probe, and the cookie-protected sync pair.
func NewRouter(app App) *gin.Engine {
	cfg := app.Config()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.POST("/api/auth/register", PostRegister(app))
	r.POST("/api/auth/login", PostLogin(app))
	r.POST("/api/auth/logout", PostLogout(app))
	r.GET("/api/auth/me", auth.OptionalMiddleware(app.Sessions(), cfg.SessionSecret), GetMe(app))

	sync := r.Group("/api/sync")
	sync.Use(auth.Middleware(app.Sessions(), cfg.SessionSecret))
	sync.GET("/pull", GetSyncPull(app))
	sync.POST("/replace", PostSyncReplace(app))

	return r
}

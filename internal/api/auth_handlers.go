package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/auth"
	"github.com/yourname/habittracker/internal/service"
	"github.com/yourname/habittracker/internal/storage"
)

func PostRegister(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: email and password required")
			return
		}

		if err := service.ValidateRegisterRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Registration validation failed")
			return
		}

		user, err := service.Register(c.Request.Context(), app.Users(), &req)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				HandleError(c, app.Logger(), err, 409, "Email already registered")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to create account")
			return
		}

		if err := issueSession(c, app, user); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to start session")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"user": publicUser(user)}, nil)
	}
}

func PostLogin(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: email and password required")
			return
		}

		if err := service.ValidateLoginRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Login validation failed")
			return
		}

		user, err := service.Login(c.Request.Context(), app.Users(), &req)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				HandleError(c, app.Logger(), err, 401, "Invalid email or password")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to sign in")
			return
		}

		if err := issueSession(c, app, user); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to start session")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"user": publicUser(user)}, nil)
	}
}

func PostLogout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
			hash := auth.HashSessionToken(app.Config().SessionSecret, token)
			if err := app.Sessions().DeleteSession(c.Request.Context(), hash); err != nil {
				app.Logger().Warnf("Failed to delete session: %v", err)
			}
		}
		clearSessionCookie(c, app)
		HandleSuccess(c, app.Logger(), gin.H{"ok": true}, nil)
	}
}

// GetMe reports the signed-in user, or user=null for anonymous callers.
// It always answers 200 so clients can probe auth state without
// triggering error handling.
func GetMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get("user"); ok {
			user := v.(*internal.User)
			HandleSuccess(c, app.Logger(), gin.H{"user": publicUser(user)}, nil)
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"user": nil}, nil)
	}
}

func issueSession(c *gin.Context, app App, user *internal.User) error {
	cfg := app.Config()
	token, err := service.StartSession(c.Request.Context(), app.Sessions(), cfg.SessionSecret, user, cfg.SessionDays)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, cfg.SessionDays*24*60*60, "/", "", cfg.Env == "production", true)
	return nil
}

func clearSessionCookie(c *gin.Context, app App) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", app.Config().Env == "production", true)
}

func publicUser(u *internal.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/snapshot"
)

func GetSyncPull(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		payload, err := app.Snapshots().GetPayload(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load data")
			return
		}

		HandleSuccess(c, app.Logger(), payload, nil)
	}
}

func PostSyncReplace(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var payload internal.SyncPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := snapshot.ValidatePayload(&payload); err != nil {
			HandleError(c, app.Logger(), err, 400, "Payload validation failed")
			return
		}

		if err := app.Snapshots().ReplacePayload(c.Request.Context(), user.ID, &payload); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to replace data")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"ok": true}, nil)
	}
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/v1/notifications - the caller's notifications
func (ctl *Controller) ListNotifications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notifications, err := ctl.Notifications.List(c.Request.Context(), actor)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (ctl *Controller) MarkNotificationRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	notification, err := ctl.Notifications.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count
func (ctl *Controller) UnreadNotificationCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	count, err := ctl.Notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unread": count},
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/constants"
	"github.com/yukikurage/intern-management-api/internal/dto"
	"github.com/yukikurage/intern-management-api/internal/services"
	"github.com/yukikurage/intern-management-api/internal/utils"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	pollSeconds   int
}

func NewNotificationHandler(notifications *services.NotificationService, pollSeconds int) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		pollSeconds:   pollSeconds,
	}
}

// ListNotifications returns the caller's notifications, newest first
// Supports unread_only and limit
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread_only"))
	limit := utils.GetListLimit(c, constants.DefaultNotificationList)

	notifications, err := h.notifications.ListForUser(actor.ID, unreadOnly, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": dto.ToNotificationDTOs(notifications),
	})
}

// UnreadCount returns the number of unread notifications
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread": count,
	})
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*n))
}

// MarkAllRead marks every notification of the caller as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
	})
}

// PollConfig tells clients how often to poll for notifications
func (h *NotificationHandler) PollConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"interval_seconds": h.pollSeconds,
	})
}

package controllers

import (
	"educprogress/backend/services"
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type NotificationController struct {
	Notifications *services.NotificationService
	Log           logrus.FieldLogger
}

func NewNotificationController(notifications *services.NotificationService, log logrus.FieldLogger) *NotificationController {
	return &NotificationController{Notifications: notifications, Log: log}
}

// GetNotifications godoc
// @Summary List a user's notifications
// @Description Newest first
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.NotificationView
// @Security ApiKeyAuth
// @Router /progress/notifications/{userId} [get]
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	views, err := nc.Notifications.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, views)
}

// MarkAsRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Param notificationId path int true "Notification ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/notifications/{notificationId}/read [put]
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	id, err := paramID(c, "notificationId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := nc.Notifications.MarkRead(c.UserContext(), id); err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.NoContent(c)
}

// MarkAllAsRead godoc
// @Summary Mark every notification of a user read
// @Tags notifications
// @Param userId path int true "User ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /progress/notifications/{userId}/read-all [put]
func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := nc.Notifications.MarkAllRead(c.UserContext(), userID); err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.NoContent(c)
}

// GetUnreadCount godoc
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /progress/notifications/{userId}/unread-count [get]
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	count, err := nc.Notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"count": count})
}

package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type NotificationController struct {
	notificationService service.NotificationService
}

func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// GetNotifications lists the user's notifications, newest first
// GET /api/notifications
func (ctrl *NotificationController) GetNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	notifications, err := ctrl.notificationService.GetNotifications(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// GetUnreadCount returns the unread badge value
// GET /api/notifications/unread-count
func (ctrl *NotificationController) GetUnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	count, err := ctrl.notificationService.GetUnreadCount(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// MarkRead marks one notification read
// PUT /api/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.MarkRead(userID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Notification not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked read",
	})
}

// MarkAllRead marks every notification read
// PUT /api/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.notificationService.MarkAllRead(userID); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked read",
	})
}

// DeleteNotification removes one notification
// DELETE /api/notifications/:id
func (ctrl *NotificationController) DeleteNotification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.DeleteNotification(userID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Notification not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted",
	})
}

// JoinWaitlist subscribes the user to restock alerts for a product
// POST /api/products/:id/waitlist
func (ctrl *NotificationController) JoinWaitlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.JoinWaitlist(userID, productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Added to waitlist",
	})
}

// LeaveWaitlist unsubscribes the user from a product's restock alerts
// DELETE /api/products/:id/waitlist
func (ctrl *NotificationController) LeaveWaitlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.LeaveWaitlist(userID, productID); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Removed from waitlist",
	})
}
